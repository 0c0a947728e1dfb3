package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *Catalog {
	return NewCatalog(PriceRefs{
		Starter:      "price_starter",
		Professional: "price_pro",
		Enterprise:   "price_ent",
	})
}

func TestCatalog_PlanForPrice(t *testing.T) {
	c := testCatalog()

	assert.Equal(t, PlanStarter, c.PlanForPrice("price_starter"))
	assert.Equal(t, PlanProfessional, c.PlanForPrice("price_pro"))
	assert.Equal(t, PlanEnterprise, c.PlanForPrice("price_ent"))
	assert.Equal(t, PlanFree, c.PlanForPrice("price_unknown"))
	assert.Equal(t, PlanFree, c.PlanForPrice(""))
}

func TestCatalog_UnconfiguredPricesNeverMatch(t *testing.T) {
	c := NewCatalog(PriceRefs{})
	assert.Equal(t, PlanFree, c.PlanForPrice(""))

	p, ok := c.Plan(PlanStarter)
	require.True(t, ok)
	assert.False(t, p.Purchasable())
}

func TestCatalog_PlansInRankOrder(t *testing.T) {
	plans := testCatalog().Plans()
	require.Len(t, plans, 4)
	for i, p := range plans {
		assert.Equal(t, i, Rank(p.ID))
	}

	free, ok := testCatalog().Plan(PlanFree)
	require.True(t, ok)
	assert.Empty(t, free.PriceRef)
	assert.Equal(t, 10, free.Limits.BuyerViews)

	_, ok = testCatalog().Plan("GOLD")
	assert.False(t, ok)
}

func TestParsePlanID(t *testing.T) {
	assert.Equal(t, PlanStarter, ParsePlanID(" starter "))
	assert.Equal(t, -1, Rank(ParsePlanID("gold")))
}
