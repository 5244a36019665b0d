package txbench

import (
	"context"
	"time"

	g "github.com/hhkbp2/txbench/generator"
	"github.com/pkg/errors"
)

// Populate writes the keys "0" to "TableSize-1", each holding
// PopulateValue. The whole table goes into one transaction unless
// PopulateBatchSize is set, in which case a transaction is committed every
// PopulateBatchSize keys.
func Populate(ctx context.Context, store Store, config *WorkloadConfig) error {
	Infof("populating %d keys", config.TableSize)
	start := time.Now()
	batchSize := config.PopulateBatchSize
	if batchSize <= 0 || batchSize > config.TableSize {
		batchSize = config.TableSize
	}
	keys := g.NewCounterGenerator(0)
	for written := int64(0); written < config.TableSize; {
		txn, err := store.Begin(ctx)
		if err != nil {
			return errors.Wrap(err, "population BEGIN")
		}
		var i int64
		for ; i < batchSize && written+i < config.TableSize; i++ {
			key := keys.NextString()
			if err = txn.Put(ctx, key, PopulateValue); err != nil {
				txn.Rollback(ctx)
				return errors.Wrapf(err, "population INSERT key %s", key)
			}
		}
		if err = txn.Commit(ctx); err != nil {
			txn.Rollback(ctx)
			return errors.Wrap(err, "population COMMIT")
		}
		written += i
		Debugf("populated %d/%d keys", written, config.TableSize)
	}
	Infof("populated %d keys in %s", config.TableSize, time.Since(start))
	return nil
}
