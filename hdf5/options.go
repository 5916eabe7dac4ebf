package hdf5

import "go.uber.org/zap"

// TableOption configures a Table.
type TableOption func(*tableOptions)

type tableOptions struct {
	logger *zap.Logger
}

func defaultTableOptions() *tableOptions {
	return &tableOptions{
		logger: Logger(),
	}
}

// WithLogger sets the logger used for handle bookkeeping messages.
// A nil logger is ignored.
func WithLogger(l *zap.Logger) TableOption {
	return func(o *tableOptions) {
		if l != nil {
			o.logger = l
		}
	}
}
