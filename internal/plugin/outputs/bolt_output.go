package outputs

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sliink/meter/internal/model"
	"github.com/sliink/meter/internal/plugin"
	bolt "go.etcd.io/bbolt"
)

// StoredPoint is the record written by BoltOutput, one per point
type StoredPoint struct {
	Metric     string            `json:"metric"`
	Unit       string            `json:"unit"`
	Source     string            `json:"source"`
	Resource   string            `json:"resource"`
	Timestamp  time.Time         `json:"timestamp"`
	Value      float64           `json:"value"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// BoltOutput stores measurements in a bbolt database, keyed by insertion
// order
type BoltOutput struct {
	plugin.BasePlugin
	output string
	path   string
	bucket string
	db     *bolt.DB
	mu     sync.Mutex
}

// NewBoltOutput creates a new bolt output plugin
func NewBoltOutput() *BoltOutput {
	return &BoltOutput{
		BasePlugin: plugin.NewBasePlugin("bolt", "1.0.0"),
	}
}

// Init reads the database path and bucket
func (b *BoltOutput) Init(config map[string]any) error {
	if err := b.BasePlugin.Init(config); err != nil {
		return err
	}
	b.path = b.ConfigString("path", "")
	if b.path == "" {
		return errors.New("no database path configured")
	}
	b.bucket = b.ConfigString("bucket", "measurements")
	b.output = b.ConfigString("name", "store")
	return nil
}

// Start opens the database and registers the output
func (b *BoltOutput) Start(core model.CoreAPI) error {
	if err := b.BasePlugin.Start(core); err != nil {
		return err
	}

	db, err := bolt.Open(b.path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return fmt.Errorf("open bolt db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(b.bucket))
		return err
	})
	if err != nil {
		db.Close()
		return fmt.Errorf("create bucket %s: %w", b.bucket, err)
	}

	b.mu.Lock()
	b.db = db
	b.mu.Unlock()
	return core.AddOutput(b.output, b)
}

// Stop closes the database
func (b *BoltOutput) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

// Write stores every point of the buffer in one transaction
func (b *BoltOutput) Write(buf *model.MeasurementBuffer, metrics model.MetricLookup) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return errors.New("bolt db is closed")
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(b.bucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", b.bucket)
		}
		for _, point := range buf.Points {
			def := describe(point, metrics)
			data, err := json.Marshal(StoredPoint{
				Metric:     def.Name,
				Unit:       def.Unit.String(),
				Source:     buf.Source.String(),
				Resource:   point.Resource,
				Timestamp:  point.Timestamp,
				Value:      point.Float(),
				Attributes: point.Attributes,
			})
			if err != nil {
				return fmt.Errorf("marshal point: %w", err)
			}

			seq, err := bucket.NextSequence()
			if err != nil {
				return err
			}
			key := make([]byte, 8)
			binary.BigEndian.PutUint64(key, seq)
			if err := bucket.Put(key, data); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReadPoints returns the stored points, oldest first. A non-positive limit
// returns them all.
func (b *BoltOutput) ReadPoints(limit int) ([]StoredPoint, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return nil, errors.New("bolt db is closed")
	}

	var points []StoredPoint
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(b.bucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", b.bucket)
		}
		c := bucket.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if limit > 0 && len(points) >= limit {
				break
			}
			var p StoredPoint
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("unmarshal point %x: %w", k, err)
			}
			points = append(points, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return points, nil
}
