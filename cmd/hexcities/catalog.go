package main

import (
	"github.com/talgya/hex-cities/internal/agents"
	"github.com/talgya/hex-cities/internal/economy"
)

// Goods produced and consumed in the demo economy.
const (
	goodFish = iota + 1
	goodBread
	goodCloth
	goodTools
)

// Building type ids, 1-based positions in defaultCatalog.
const (
	buildingPalace = iota + 1
	buildingHouse
	buildingFisher
	buildingBakery
	buildingWeaver
	buildingSmithy
)

func defaultCatalog() []economy.BuildingType {
	return []economy.BuildingType{
		{Name: "Palace", Description: "Seat of the city", Era: 1, Gold: 3, Science: 2, Citizens: 4, ProductionCost: 150, PurchaseCost: 500},
		{Name: "House", Description: "Homes for citizens", Era: 1, Citizens: 3, ProductionCost: 40, PurchaseCost: 120},
		{
			Name: "Fisher", Era: 1, Food: 2, Citizens: 1, ProductionCost: 60, PurchaseCost: 200,
			GoodsProduction: []economy.GoodAmount{{Good: goodFish, Amount: 2}},
		},
		{
			Name: "Bakery", Era: 1, Food: 1, Citizens: 1, ProductionCost: 80, PurchaseCost: 240,
			GoodsProduction: []economy.GoodAmount{{Good: goodBread, Amount: 2}},
			GoodsCost:       []economy.GoodAmount{{Good: goodFish, Amount: 1}},
		},
		{
			Name: "Weaver", Era: 2, Invention: 3, Citizens: 1, ProductionCost: 90, PurchaseCost: 300,
			GoodsProduction: []economy.GoodAmount{{Good: goodCloth, Amount: 1}},
		},
		{
			Name: "Smithy", Era: 2, Invention: 5, Production: 2, Citizens: 2, ProductionCost: 120, PurchaseCost: 400,
			GoodsProduction: []economy.GoodAmount{{Good: goodTools, Amount: 1}},
		},
	}
}

// needsForTier returns a fresh need set for an inhabitant of tier.
func needsForTier(tier int) []agents.Need {
	needs := []agents.Need{
		agents.NewNeed(1, 5, goodFish, goodBread),
	}
	if tier >= 2 {
		needs = append(needs, agents.NewNeed(3, 10, goodCloth))
	}
	if tier >= 3 {
		needs = append(needs, agents.NewNeed(4, 15, goodTools))
	}
	return needs
}
