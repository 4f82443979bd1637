package outputs

import (
	"context"
	"errors"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/sliink/meter/internal/model"
	"github.com/sliink/meter/internal/plugin"
)

// InfluxOutput writes measurements to an InfluxDB v2 bucket. Each metric
// becomes a measurement with a single "value" field.
type InfluxOutput struct {
	plugin.BasePlugin
	output   string
	url      string
	token    string
	org      string
	bucket   string
	timeout  time.Duration
	connect  func(url, token, org, bucket string) (api.WriteAPIBlocking, func())
	writeAPI api.WriteAPIBlocking
	close    func()
	mu       sync.Mutex
}

// NewInfluxOutput creates a new influx output plugin
func NewInfluxOutput() *InfluxOutput {
	return &InfluxOutput{
		BasePlugin: plugin.NewBasePlugin("influx", "1.0.0"),
		connect:    connectInflux,
	}
}

func connectInflux(url, token, org, bucket string) (api.WriteAPIBlocking, func()) {
	client := influxdb2.NewClient(url, token)
	return client.WriteAPIBlocking(org, bucket), client.Close
}

// Init reads the server address, credentials and bucket
func (o *InfluxOutput) Init(config map[string]any) error {
	if err := o.BasePlugin.Init(config); err != nil {
		return err
	}

	o.url = o.ConfigString("url", "http://localhost:8086")
	o.token = o.ConfigString("token", "")
	o.org = o.ConfigString("org", "")
	o.bucket = o.ConfigString("bucket", "")
	if o.org == "" || o.bucket == "" {
		return errors.New("org and bucket are required")
	}
	o.output = o.ConfigString("name", "influxdb")

	timeout, err := o.ConfigDuration("timeout", 10*time.Second)
	if err != nil {
		return err
	}
	o.timeout = timeout
	return nil
}

// Start creates the client and registers the output
func (o *InfluxOutput) Start(core model.CoreAPI) error {
	if err := o.BasePlugin.Start(core); err != nil {
		return err
	}

	o.mu.Lock()
	o.writeAPI, o.close = o.connect(o.url, o.token, o.org, o.bucket)
	o.mu.Unlock()
	return core.AddOutput(o.output, o)
}

// Stop closes the client
func (o *InfluxOutput) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.close != nil {
		o.close()
	}
	o.writeAPI, o.close = nil, nil
	return nil
}

// Write sends the buffer in one request
func (o *InfluxOutput) Write(buf *model.MeasurementBuffer, metrics model.MetricLookup) error {
	if buf.Size() == 0 {
		return nil
	}

	o.mu.Lock()
	writeAPI := o.writeAPI
	o.mu.Unlock()
	if writeAPI == nil {
		return errors.New("influx client is closed")
	}

	points := make([]*write.Point, len(buf.Points))
	for i, p := range buf.Points {
		points[i] = influxPoint(buf.Source, p, describe(p, metrics))
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()
	return writeAPI.WritePoint(ctx, points...)
}

func influxPoint(source model.SourceName, p model.MeasurementPoint, def model.MetricDef) *write.Point {
	tags := map[string]string{
		"source":   source.String(),
		"resource": p.Resource,
	}
	if unit := def.Unit.String(); unit != "" {
		tags["unit"] = unit
	}
	for k, v := range p.Attributes {
		tags[k] = v
	}
	return influxdb2.NewPoint(def.Name, tags, map[string]any{"value": p.Value}, p.Timestamp)
}
