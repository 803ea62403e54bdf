// Package neighbors は k 近傍探索と、計算済みの近傍ランキングを保持する
// 永続キャッシュを提供します。
//
// 厳密な k-NN はクエリ1件あたり O(n log n) のソートを必要とします。特徴量が
// 固定されていればランキングはバンド幅を変えても再利用できるため、Cache に
// 保存してファイルに書き出し、後の実験で読み込み直します。
package neighbors

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/RoaringBitmap/roaring"
	"github.com/tidwall/btree"

	"github.com/YuminosukeSato/kernreg/pkg/errors"
	"github.com/YuminosukeSato/kernreg/pkg/log"
	"github.com/YuminosukeSato/kernreg/pkg/monitor"
)

// Capacity is the longest neighbour list a Cache accepts.
const Capacity = 256

// Cache はクエリ点のインデックスから近傍インデックス列 (近い順) への対応表です。
//
// Cache は内部でロックを取りません。複数の KNearestNeighbors や Precompute
// から同じ Cache を使う場合は、呼び出し側で書き込みを直列化してください。
type Cache struct {
	lists  btree.Map[int, []int]
	logger log.Logger
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithCacheLogger sets the logger used for load and write events.
func WithCacheLogger(logger log.Logger) CacheOption {
	return func(c *Cache) {
		c.logger = logger
	}
}

// NewCache は空の Cache を作成します。
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{logger: log.GetLogger()}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(log.ComponentKey, "NeighborCache")
	return c
}

// Put は key の近傍リストを保存します。既存の値は置き換えられます。
// list はコピーされるため、呼び出し後に変更しても Cache には影響しません。
func (c *Cache) Put(key int, list []int) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if len(list) > Capacity {
		return errors.NewValidationError("neighborList", "length exceeds cache capacity of 256", len(list))
	}
	stored := make([]int, len(list))
	copy(stored, list)
	c.lists.Set(key, stored)
	monitor.CacheRecords.WithLabelValues(monitor.OpPut).Inc()
	return nil
}

// Get は key の近傍リストのコピーを返します。
func (c *Cache) Get(key int) ([]int, bool) {
	list, ok := c.lists.Get(key)
	if !ok {
		return nil, false
	}
	out := make([]int, len(list))
	copy(out, list)
	return out, true
}

// ContainsKey reports whether key has a stored list.
func (c *Cache) ContainsKey(key int) bool {
	_, ok := c.lists.Get(key)
	return ok
}

// Len returns the number of stored lists.
func (c *Cache) Len() int {
	return c.lists.Len()
}

// Keys はキー集合をビットマップで返します。返り値は Cache から独立しています。
func (c *Cache) Keys() *roaring.Bitmap {
	keys := roaring.New()
	c.lists.Scan(func(key int, _ []int) bool {
		keys.Add(uint32(key))
		return true
	})
	return keys
}

// MissingKeys は [0, n) のうちランキングが未保存のインデックスを返します。
// Precompute に渡して差分だけを計算する用途を想定しています。
func (c *Cache) MissingKeys(n int) *roaring.Bitmap {
	missing := roaring.New()
	if n <= 0 {
		return missing
	}
	missing.AddRange(0, uint64(n))
	missing.AndNot(c.Keys())
	return missing
}

// Indices はビットマップの要素を昇順の int スライスに変換します。
func Indices(b *roaring.Bitmap) []int {
	out := make([]int, 0, b.GetCardinality())
	it := b.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// Write は全レコードをキーの昇順で path に書き出し、書き込んだ件数を返します。
// 各行は "key,n1,n2,...,nk" の形式です。
func (c *Cache) Write(path string) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to create cache file %s", path)
	}

	n, err := c.WriteRecords(file)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = errors.Wrapf(closeErr, "failed to close cache file %s", path)
	}
	if err != nil {
		return n, err
	}

	c.logger.Info("neighbour cache written",
		log.OperationKey, log.OperationWrite,
		log.CachePathKey, path,
		log.CacheRecordsKey, n,
	)
	return n, nil
}

// WriteRecords は Write と同じ形式で w に書き出します。
func (c *Cache) WriteRecords(w io.Writer) (int, error) {
	writer := csv.NewWriter(w)

	var (
		count    int
		writeErr error
		record   []string
	)
	c.lists.Scan(func(key int, list []int) bool {
		record = record[:0]
		record = append(record, strconv.Itoa(key))
		for _, idx := range list {
			record = append(record, strconv.Itoa(idx))
		}
		if err := writer.Write(record); err != nil {
			writeErr = errors.Wrapf(err, "failed to write record for key %d", key)
			return false
		}
		count++
		return true
	})
	if writeErr != nil {
		return count, writeErr
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return count, errors.Wrap(err, "failed to flush cache records")
	}
	monitor.CacheRecords.WithLabelValues(monitor.OpWrite).Add(float64(count))
	return count, nil
}

// LoadAppend は path のレコードを既存の内容にマージし、追加した件数を返します。
//
// 既に存在するキーを読み込んだ時点で *errors.DuplicateKeyError を返します。
// それまでに追加されたレコードは残り、返り値の件数に含まれます。
func (c *Cache) LoadAppend(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to open cache file %s", path)
	}
	defer file.Close()

	n, err := c.LoadAppendReader(file)
	if err != nil {
		c.logger.Error("neighbour cache merge failed", err,
			log.OperationKey, log.OperationLoad,
			log.CachePathKey, path,
			log.CacheRecordsKey, n,
		)
		return n, err
	}

	c.logger.Info("neighbour cache merged",
		log.OperationKey, log.OperationLoad,
		log.CachePathKey, path,
		log.CacheRecordsKey, n,
	)
	return n, nil
}

// LoadAppendReader は LoadAppend と同じ規則で r からレコードを読み込みます。
func (c *Cache) LoadAppendReader(r io.Reader) (int, error) {
	const op = "Cache.LoadAppend"

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	added := 0
	defer func() {
		monitor.CacheRecords.WithLabelValues(monitor.OpLoad).Add(float64(added))
	}()

	for {
		record, err := reader.Read()
		if err == io.EOF {
			return added, nil
		}
		if err != nil {
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				return added, errors.NewParseError(op, csvErr.Line, "malformed record", err)
			}
			return added, errors.Wrap(err, "failed to read cache records")
		}
		line, _ := reader.FieldPos(0)

		if len(record)-1 > Capacity {
			return added, errors.NewParseError(op, line, "neighbour list exceeds cache capacity", nil)
		}
		values, err := parseRecord(record)
		if err != nil {
			return added, errors.NewParseError(op, line, "non-integer field", err)
		}

		key := values[0]
		if err := validateKey(key); err != nil {
			return added, errors.NewParseError(op, line, "invalid key", err)
		}
		if c.ContainsKey(key) {
			return added, errors.NewDuplicateKeyError(op, key, line)
		}
		c.lists.Set(key, values[1:])
		added++
	}
}

func parseRecord(record []string) ([]int, error) {
	values := make([]int, len(record))
	for i, field := range record {
		v, err := strconv.Atoi(field)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// キーは roaring.Bitmap に入るよう uint32 の範囲に制限します。
func validateKey(key int) error {
	if key < 0 || int64(key) > math.MaxUint32 {
		return errors.NewValidationError("key", "must be in [0, 2^32)", key)
	}
	return nil
}
