package services

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fixtureforge/forge-engine/pkg/models"
)

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

const randomValueLength = 8

// customerIDField gets sequential 1-based values instead of random ones so a
// generated batch always contains a usable join key.
const customerIDField = "customer_id"

// prefixedStringFields get short "V<n>" values instead of random letter runs,
// matching common audit-column conventions downstream consumers expect.
var prefixedStringFields = map[string]bool{
	"sys_creation_date": true,
	"key":               true,
	"createdby":         true,
}

// RecordSynthesizer produces synthetic transaction envelopes for a canonical
// schema. The random source is injected so tests can seed it; a nil source
// falls back to a time-seeded one. Safe for concurrent use.
type RecordSynthesizer struct {
	mu     sync.Mutex
	rng    *rand.Rand
	logger *zap.Logger
}

// NewRecordSynthesizer creates a RecordSynthesizer around the given random
// source. Pass nil for a time-seeded source.
func NewRecordSynthesizer(rng *rand.Rand, logger *zap.Logger) *RecordSynthesizer {
	if rng == nil {
		now := time.Now()
		rng = rand.New(rand.NewPCG(uint64(now.UnixNano()), uint64(now.Unix())))
	}
	return &RecordSynthesizer{rng: rng, logger: logger}
}

// Synthesize produces count envelopes for the schema's table, one record per
// envelope. count must be non-negative; zero yields an empty slice.
func (s *RecordSynthesizer) Synthesize(schema *models.Schema, count int) ([]models.TransactionEnvelope, error) {
	if count < 0 {
		return nil, fmt.Errorf("record count must be non-negative, got %d", count)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	envelopes := make([]models.TransactionEnvelope, 0, count)
	for i := 0; i < count; i++ {
		record := make(models.Record, schema.Fields.Len())
		for pair := schema.Fields.Oldest(); pair != nil; pair = pair.Next() {
			record[pair.Key] = s.fieldValue(pair.Key, pair.Value, i)
		}

		envelopes = append(envelopes, models.TransactionEnvelope{
			StartTransaction: true,
			TransactionID:    fmt.Sprintf("transaction%d", s.smallInt()),
			EndTransaction:   true,
			RepeatedMessages: map[string][]models.Record{
				schema.TableName: {record},
			},
		})
	}

	s.logger.Debug("synthesized records",
		zap.String("table", schema.TableName),
		zap.Int("count", count),
	)

	return envelopes, nil
}

// fieldValue generates one value for record index i (0-based).
func (s *RecordSynthesizer) fieldValue(name string, fieldType models.FieldType, i int) any {
	switch fieldType {
	case models.FieldTypeString:
		if prefixedStringFields[strings.ToLower(name)] {
			return fmt.Sprintf("V%d", s.smallInt())
		}
		return s.randomLetters(randomValueLength)
	case models.FieldTypeInteger:
		if strings.ToLower(name) == customerIDField {
			return strconv.Itoa(i + 1)
		}
		return strconv.Itoa(s.smallInt())
	case models.FieldTypeTimestamp:
		return time.Now().UnixMilli()
	case models.FieldTypeOperation:
		return models.UpsertOperation()
	default:
		return nil
	}
}

// smallInt returns a uniform random integer in [1, 100].
func (s *RecordSynthesizer) smallInt() int {
	return s.rng.IntN(100) + 1
}

func (s *RecordSynthesizer) randomLetters(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[s.rng.IntN(len(letters))]
	}
	return string(b)
}
