package nlu_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora/vehicle-discovery/internal/adapters/providers/nlu"
	"github.com/velora/vehicle-discovery/internal/domain/providers"
	"github.com/velora/vehicle-discovery/internal/evaluation"
)

func entityValues(entities []providers.Entity, entityType string) []string {
	var out []string
	for _, e := range entities {
		if e.Type == entityType {
			out = append(out, e.Value)
		}
	}
	return out
}

func TestRuleProvider_MultiWordModel(t *testing.T) {
	p := nlu.NewRuleProvider()

	result, err := p.Understand(context.Background(), "BMW 3 Series under £20,000")
	require.NoError(t, err)

	assert.Equal(t, []string{"BMW"}, entityValues(result.Entities, nlu.EntityMake))
	assert.Equal(t, []string{"3 Series"}, entityValues(result.Entities, nlu.EntityModel))
	assert.Equal(t, []string{"20000"}, entityValues(result.Entities, nlu.EntityPriceMax))
	assert.Equal(t, evaluation.IntentFilter, result.Intent)
}

func TestRuleProvider_ModelImpliesMake(t *testing.T) {
	p := nlu.NewRuleProvider()

	result, err := p.Understand(context.Background(), "a used Qashqai")
	require.NoError(t, err)

	assert.Equal(t, []string{"Nissan"}, entityValues(result.Entities, nlu.EntityMake))
	assert.Equal(t, []string{"Qashqai"}, entityValues(result.Entities, nlu.EntityModel))
	assert.Equal(t, evaluation.IntentLookup, result.Intent)
}

func TestRuleProvider_NumericExtraction(t *testing.T) {
	p := nlu.NewRuleProvider()
	ctx := context.Background()

	result, err := p.Understand(ctx, "diesel estate under 15k with under 80,000 km from 2018")
	require.NoError(t, err)

	assert.Equal(t, []string{"diesel"}, entityValues(result.Entities, nlu.EntityFuelType))
	assert.Equal(t, []string{"estate"}, entityValues(result.Entities, nlu.EntityBodyType))
	assert.Equal(t, []string{"15000"}, entityValues(result.Entities, nlu.EntityPriceMax))
	assert.Equal(t, []string{"80000"}, entityValues(result.Entities, nlu.EntityMileageMax))
	assert.Equal(t, []string{"2018"}, entityValues(result.Entities, nlu.EntityYearMin))
	assert.Equal(t, evaluation.IntentFilter, result.Intent)

	result, err = p.Understand(ctx, "BMW over 25000")
	require.NoError(t, err)
	assert.Equal(t, []string{"25000"}, entityValues(result.Entities, nlu.EntityPriceMin))
	assert.Empty(t, entityValues(result.Entities, nlu.EntityPriceMax))

	// A bare priced amount reads as a ceiling.
	result, err = p.Understand(ctx, "a £9,500 runaround")
	require.NoError(t, err)
	assert.Equal(t, []string{"9500"}, entityValues(result.Entities, nlu.EntityPriceMax))
}

func TestRuleProvider_SpellingCorrection(t *testing.T) {
	p := nlu.NewRuleProvider()

	result, err := p.Understand(context.Background(), "relaible dissel volkswagon")
	require.NoError(t, err)

	assert.Equal(t, []string{"Volkswagen"}, entityValues(result.Entities, nlu.EntityMake))
	assert.Equal(t, []string{"diesel"}, entityValues(result.Entities, nlu.EntityFuelType))
	assert.Equal(t, []string{"reliable"}, entityValues(result.Entities, nlu.EntityQuality))
}

func TestRuleProvider_RefineMarkers(t *testing.T) {
	p := nlu.NewRuleProvider()

	result, err := p.Understand(context.Background(), "show me cheaper ones")
	require.NoError(t, err)
	assert.Equal(t, evaluation.IntentRefine, result.Intent)
	assert.InDelta(t, 0.8, result.Confidence, 1e-9)
}

func TestRuleProvider_OffTopicIsUnknown(t *testing.T) {
	p := nlu.NewRuleProvider()

	result, err := p.Understand(context.Background(), "what is the capital of France")
	require.NoError(t, err)
	assert.Equal(t, evaluation.IntentUnknown, result.Intent)
	assert.Empty(t, result.Entities)
}

func TestRuleProvider_EmptyQuery(t *testing.T) {
	p := nlu.NewRuleProvider()

	result, err := p.Understand(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, evaluation.IntentUnknown, result.Intent)
	assert.Empty(t, result.Entities)
}

type recordingCache struct {
	store map[string][]byte
	gets  int
	sets  int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{store: map[string][]byte{}}
}

func (c *recordingCache) Get(_ context.Context, key string) ([]byte, error) {
	c.gets++
	if v, ok := c.store[key]; ok {
		return v, nil
	}
	return nil, context.Canceled
}

func (c *recordingCache) Set(_ context.Context, key string, value []byte, _ int) error {
	c.sets++
	c.store[key] = value
	return nil
}

func (c *recordingCache) Delete(_ context.Context, key string) error {
	delete(c.store, key)
	return nil
}

func (c *recordingCache) Exists(_ context.Context, key string) (bool, error) {
	_, ok := c.store[key]
	return ok, nil
}

func TestRuleProvider_CachesInterpretations(t *testing.T) {
	p := nlu.NewRuleProvider()
	cache := newRecordingCache()
	p.SetCache(cache)

	ctx := context.Background()
	first, err := p.Understand(ctx, "BMW 3 Series")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	second, err := p.Understand(ctx, "BMW 3 Series")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, first.Intent, second.Intent)
	assert.Equal(t, first.Entities, second.Entities)
}
