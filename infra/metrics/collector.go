package metrics

import (
	"context"

	coremetrics "github.com/kilianp07/spms/core/metrics"
	"github.com/kilianp07/spms/infra/logger"
)

// StartEventCollector forwards metrics events received on sub to sink until
// ctx is canceled or sub is closed. Events of other types are ignored. The
// returned channel is closed once the collector has stopped.
func StartEventCollector(ctx context.Context, sub <-chan any, sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	if sub == nil || sink == nil {
		close(done)
		return done
	}
	log := logger.New("metrics-collector")
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := record(sink, ev); err != nil {
					log.Warnf("record %T: %v", ev, err)
				}
			}
		}
	}()
	return done
}

func record(sink coremetrics.MetricsSink, ev any) error {
	switch e := ev.(type) {
	case coremetrics.RunEvent:
		return sink.RecordRun(e)
	case coremetrics.OptimizerStepEvent:
		if r, ok := sink.(coremetrics.OptimizerStepRecorder); ok {
			return r.RecordOptimizerStep(e)
		}
	case coremetrics.InvalidCommandEvent:
		if r, ok := sink.(coremetrics.InvalidCommandRecorder); ok {
			return r.RecordInvalidCommand(e)
		}
	}
	return nil
}
