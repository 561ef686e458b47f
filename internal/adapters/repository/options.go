package repository

import (
	"net/http"
	"time"

	"github.com/okian/fishery/internal/domain/model"
)

// Option configures a store adapter. Options that do not apply to an
// adapter are ignored by it.
type Option func(*options)

type options struct {
	table      string
	httpClient *http.Client
	timeout    time.Duration
	seed       []model.FishRecord
}

func defaultOptions() options {
	return options{table: "fish"}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithTable sets the table holding fish records (default "fish").
func WithTable(table string) Option {
	return func(o *options) {
		if table != "" {
			o.table = table
		}
	}
}

// WithHTTPClient sets the client used by the postgrest store.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithTimeout bounds each postgrest call. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithSeed preloads the memory store. Seeded records get fresh Ids.
func WithSeed(records ...model.FishRecord) Option {
	return func(o *options) {
		o.seed = append(o.seed, records...)
	}
}
