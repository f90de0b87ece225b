// Package journal keeps an in-memory DuckDB log of cargo lifecycle events so
// an airway bill's history can be queried while the simulator runs.
package journal

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/marcboeker/go-duckdb"

	"github.com/freight-sim/backend/internal/logging"
	"github.com/freight-sim/backend/internal/models"
)

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("journal closed")

// Options tune buffering and batching.
type Options struct {
	BufferSize    int
	BatchSize     int
	FlushInterval time.Duration
	// OnDrop is called with the number of events lost to a full buffer.
	OnDrop func(n int)
	Logger logging.Logger
}

// DefaultOptions returns the stock journal settings.
func DefaultOptions() Options {
	return Options{
		BufferSize:    4096,
		BatchSize:     512,
		FlushInterval: 2 * time.Second,
	}
}

// Journal appends cargo events to DuckDB. Record is safe to call from the
// simulation tick; a single Run goroutine performs the writes.
type Journal struct {
	connector *duckdb.Connector
	db        *sql.DB
	events    chan models.CargoEvent
	opts      Options
	log       logging.Logger
	seq       int64
	closed    chan struct{}
}

// Open creates an empty in-memory journal.
func Open(opts Options) (*Journal, error) {
	def := DefaultOptions()
	if opts.BufferSize <= 0 {
		opts.BufferSize = def.BufferSize
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = def.BatchSize
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = def.FlushInterval
	}
	log := opts.Logger
	if log == nil {
		log = logging.Noop()
	}

	connector, err := duckdb.NewConnector("", func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA memory_limit='256MB'",
			"PRAGMA threads=2",
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)
	_, err = db.Exec(`
		CREATE TABLE cargo_events (
			seq      BIGINT  NOT NULL,
			id       VARCHAR NOT NULL,
			cargo_id VARCHAR NOT NULL,
			train_id VARCHAR NOT NULL,
			car_id   VARCHAR NOT NULL,
			status   VARCHAR NOT NULL,
			station  VARCHAR NOT NULL,
			ts       BIGINT  NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		connector.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &Journal{
		connector: connector,
		db:        db,
		events:    make(chan models.CargoEvent, opts.BufferSize),
		opts:      opts,
		log:       log,
		closed:    make(chan struct{}),
	}, nil
}

// Record queues events without blocking. Events that do not fit in the
// buffer are dropped and reported through OnDrop.
func (j *Journal) Record(events []models.CargoEvent) {
	dropped := 0
	for _, ev := range events {
		select {
		case j.events <- ev:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		if j.opts.OnDrop != nil {
			j.opts.OnDrop(dropped)
		}
		j.log.Warn(context.Background(), "journal buffer full, events dropped", logging.Int("dropped", dropped))
	}
}

// Run drains the buffer until ctx is cancelled, flushing whenever a batch
// fills or the flush interval elapses. Pending events are flushed on exit.
func (j *Journal) Run(ctx context.Context) error {
	ticker := time.NewTicker(j.opts.FlushInterval)
	defer ticker.Stop()

	batch := make([]models.CargoEvent, 0, j.opts.BatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := j.Write(context.Background(), batch); err != nil {
			j.log.Error(ctx, "journal flush failed", logging.Int("events", len(batch)), logging.Err(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case ev := <-j.events:
					batch = append(batch, ev)
				default:
					flush()
					return nil
				}
			}
		case ev := <-j.events:
			batch = append(batch, ev)
			if len(batch) >= j.opts.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// Write appends events synchronously using the DuckDB Appender. Only one
// goroutine may call Write at a time.
func (j *Journal) Write(ctx context.Context, events []models.CargoEvent) error {
	if len(events) == 0 {
		return nil
	}
	select {
	case <-j.closed:
		return ErrClosed
	default:
	}

	conn, err := j.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	err = conn.Raw(func(driverConn interface{}) error {
		dConn, ok := driverConn.(*duckdb.Conn)
		if !ok {
			return fmt.Errorf("failed to cast to duckdb.Conn")
		}

		appender, err := duckdb.NewAppenderFromConn(dConn, "", "cargo_events")
		if err != nil {
			return fmt.Errorf("failed to create appender: %w", err)
		}
		defer appender.Close()

		for i, ev := range events {
			err := appender.AppendRow(
				j.seq+int64(i),
				ev.ID,
				ev.CargoID,
				ev.TrainID,
				ev.CarID,
				string(ev.Status),
				ev.Station,
				ev.Timestamp.UnixMilli(),
			)
			if err != nil {
				return fmt.Errorf("failed to append event %s: %w", ev.ID, err)
			}
		}
		return appender.Flush()
	})
	if err != nil {
		return fmt.Errorf("appender error: %w", err)
	}
	j.seq += int64(len(events))
	return nil
}

// History returns the events of one airway bill in the order they happened.
func (j *Journal) History(ctx context.Context, cargoID string) ([]models.CargoEvent, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, cargo_id, train_id, car_id, status, station, ts
		FROM cargo_events
		WHERE cargo_id = ?
		ORDER BY seq
	`, cargoID)
	if err != nil {
		return nil, fmt.Errorf("history query failed: %w", err)
	}
	defer rows.Close()

	events := make([]models.CargoEvent, 0, 4)
	for rows.Next() {
		var ev models.CargoEvent
		var status string
		var ts int64
		if err := rows.Scan(&ev.ID, &ev.CargoID, &ev.TrainID, &ev.CarID, &status, &ev.Station, &ts); err != nil {
			return nil, fmt.Errorf("history scan failed: %w", err)
		}
		ev.Status = models.CargoStatus(status)
		ev.Timestamp = time.UnixMilli(ts).UTC()
		events = append(events, ev)
	}
	return events, rows.Err()
}

// StationDeliveries is the number of items offloaded at one station.
type StationDeliveries struct {
	Station   string `json:"station"`
	Delivered int64  `json:"delivered"`
}

// DeliveriesByStation counts delivered items per offload station, busiest
// first.
func (j *Journal) DeliveriesByStation(ctx context.Context) ([]StationDeliveries, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT station, COUNT(*) AS delivered
		FROM cargo_events
		WHERE status = ?
		GROUP BY station
		ORDER BY delivered DESC, station
	`, string(models.CargoStatusDelivered))
	if err != nil {
		return nil, fmt.Errorf("deliveries query failed: %w", err)
	}
	defer rows.Close()

	out := make([]StationDeliveries, 0, 16)
	for rows.Next() {
		var s StationDeliveries
		if err := rows.Scan(&s.Station, &s.Delivered); err != nil {
			return nil, fmt.Errorf("deliveries scan failed: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Count returns the number of journaled events.
func (j *Journal) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := j.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cargo_events").Scan(&n); err != nil {
		return 0, fmt.Errorf("count query failed: %w", err)
	}
	return n, nil
}

// Close releases the database. Run must have returned first.
func (j *Journal) Close() error {
	select {
	case <-j.closed:
		return nil
	default:
		close(j.closed)
	}
	err := j.db.Close()
	if cerr := j.connector.Close(); err == nil {
		err = cerr
	}
	return err
}
