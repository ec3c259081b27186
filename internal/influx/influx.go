package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/OCAP2/tacticboard/internal/config"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"
)

// Measurement is the measurement name of every usage point.
const Measurement = "board_event"

// ErrDisabled is returned by Connect when influx.enabled is false.
var ErrDisabled = errors.New("influx.enabled is false")

// Recorder writes board usage points to InfluxDB, or to a gzip'd
// line-protocol backup file when the server cannot be reached.
type Recorder struct {
	cfg    config.InfluxConfig
	logger zerolog.Logger

	mu         sync.Mutex
	client     influxdb2.Client
	writer     influxdb2_api.WriteAPI
	backupFile *os.File
	backup     *gzip.Writer
	valid      bool
}

// NewRecorder creates a recorder; call Connect before writing.
func NewRecorder(cfg config.InfluxConfig, log zerolog.Logger) *Recorder {
	return &Recorder{cfg: cfg, logger: log}
}

// Connect pings the server and prepares either the write API or the
// backup writer.
func (r *Recorder) Connect(ctx context.Context) error {
	if !r.cfg.Enabled {
		return ErrDisabled
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.client = influxdb2.NewClientWithOptions(
		r.cfg.ServerURL(),
		r.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(500).
			SetFlushInterval(1000),
	)

	// validate client connection health
	running, err := r.client.Ping(ctx)
	if err != nil || !running {
		r.valid = false
		if r.backup == nil {
			r.logger.Info().Str("backupPath", r.cfg.BackupPath).
				Msg("Failed to initialize InfluxDB client, writing to backup file")

			file, err := os.OpenFile(r.cfg.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				return fmt.Errorf("error creating backup file: %w", err)
			}
			r.backupFile = file
			r.backup = gzip.NewWriter(file)
		}
		r.logger.Warn().Msg("InfluxDB client failed to initialize, using backup writer")
		return nil
	}

	if err := r.ensureBucket(ctx); err != nil {
		return err
	}

	r.writer = r.client.WriteAPI(r.cfg.Org, r.cfg.Bucket)
	go func(errorsCh <-chan error) {
		for writeErr := range errorsCh {
			r.logger.Error().Err(writeErr).Str("bucket", r.cfg.Bucket).
				Msg("Error sending data to InfluxDB")
		}
	}(r.writer.Errors())

	r.valid = true
	r.logger.Info().Str("bucket", r.cfg.Bucket).Msg("InfluxDB client initialized")
	return nil
}

func (r *Recorder) ensureBucket(ctx context.Context) error {
	orgs := r.client.OrganizationsAPI()
	org, err := orgs.FindOrganizationByName(ctx, r.cfg.Org)
	if err != nil {
		r.logger.Info().Str("org", r.cfg.Org).Msg("Organization not found, creating")
		org, err = orgs.CreateOrganizationWithName(ctx, r.cfg.Org)
		if err != nil {
			r.logger.Error().Err(err).Str("org", r.cfg.Org).Msg("Error creating organization")
			return err
		}
	}

	if _, err := r.client.BucketsAPI().FindBucketByName(ctx, r.cfg.Bucket); err == nil {
		return nil
	}
	r.logger.Info().Str("bucket", r.cfg.Bucket).Msg("Bucket not found, creating")

	rule := domain.RetentionRuleTypeExpire
	_, err = r.client.BucketsAPI().CreateBucketWithName(ctx, org, r.cfg.Bucket, domain.RetentionRule{
		Type:         &rule,
		EverySeconds: 60 * 60 * 24 * 90, // 90 days
	})
	if err != nil {
		r.logger.Error().Err(err).Str("bucket", r.cfg.Bucket).Msg("Error creating bucket")
		return err
	}
	return nil
}

// Valid reports whether points go to the server rather than the backup file.
func (r *Recorder) Valid() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.valid
}

// NewBoardPoint builds a usage point tagged with the event name.
func NewBoardPoint(event string, fields map[string]any, ts time.Time) *influxdb2_write.Point {
	if len(fields) == 0 {
		fields = map[string]any{"count": 1}
	}
	return influxdb2_write.NewPoint(Measurement, map[string]string{"event": event}, fields, ts)
}

// Record writes one usage point for event.
func (r *Recorder) Record(ctx context.Context, event string, fields map[string]any) error {
	return r.WritePoint(ctx, NewBoardPoint(event, fields, time.Now()))
}

// WritePoint writes a point to InfluxDB or the backup file.
func (r *Recorder) WritePoint(_ context.Context, point *influxdb2_write.Point) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.valid {
		r.writer.WritePoint(point)
		return nil
	}
	if r.backup == nil {
		return fmt.Errorf("influxDB client not initialized and backup writer not available")
	}

	lineProtocol := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
	if !strings.HasSuffix(lineProtocol, "\n") {
		lineProtocol += "\n"
	}
	if _, err := r.backup.Write([]byte(lineProtocol)); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}

// Close flushes pending points and releases the client and backup file.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.writer != nil {
		r.writer.Flush()
	}
	if r.client != nil {
		r.client.Close()
	}

	var errs []error
	if r.backup != nil {
		errs = append(errs, r.backup.Close())
		errs = append(errs, r.backupFile.Close())
		r.backup = nil
	}
	r.valid = false
	return errors.Join(errs...)
}
