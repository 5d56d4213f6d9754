package relation

import (
	"bytes"
	"context"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/mapper"
	"github.com/syssam/mapper/dialect"
)

// cached returns the rows stored under key. Cache failures are logged
// and reported as a miss.
func (r *Relation) cached(ctx context.Context, key mapper.CacheKey) ([]dialect.Row, bool) {
	if r.cfg.cache == nil {
		return nil, false
	}
	data, err := r.cfg.cache.Get(ctx, key.String())
	if err != nil {
		r.cfg.logger.WarnContext(ctx, "relation: cache get", "key", key.String(), "error", err)
		return nil, false
	}
	if data == nil {
		return nil, false
	}
	rows, err := decodeRows(data)
	if err != nil {
		r.cfg.logger.WarnContext(ctx, "relation: cache decode", "key", key.String(), "error", err)
		return nil, false
	}
	return rows, true
}

func (r *Relation) store(ctx context.Context, key mapper.CacheKey, rows []dialect.Row) {
	if r.cfg.cache == nil {
		return
	}
	data, err := encodeRows(rows)
	if err == nil {
		err = r.cfg.cache.Set(ctx, key.String(), data, r.cfg.cacheTTL)
	}
	if err != nil {
		r.cfg.logger.WarnContext(ctx, "relation: cache set", "key", key.String(), "error", err)
	}
}

// evict drops the cached rows of the relation's table.
func (r *Relation) evict(ctx context.Context) {
	if r.cfg.cache == nil {
		return
	}
	prefix := mapper.CacheKey{Table: r.model.TableName()}.Prefix()
	if err := r.cfg.cache.DeletePrefix(ctx, prefix); err != nil {
		r.cfg.logger.WarnContext(ctx, "relation: cache evict", "prefix", prefix, "error", err)
	}
}

func encodeRows(rows []dialect.Row) ([]byte, error) {
	var buf bytes.Buffer
	// Signed integers keep their fixed-width encoding so that they decode
	// as int64 whatever their value.
	if err := msgpack.NewEncoder(&buf).Encode(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeRows decodes rows encoded by encodeRows. Integers decode as int64
// and floats as float64, the types database drivers return.
func decodeRows(data []byte) ([]dialect.Row, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)
	var rows []dialect.Row
	if err := dec.Decode(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}
