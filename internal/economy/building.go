package economy

import (
	"slices"

	"github.com/talgya/hex-cities/internal/world"
)

// BuildingType is an immutable catalog definition. Type ids are 1-based and
// match the definition's position in the catalog.
type BuildingType struct {
	Type        int      `json:"type"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Era         int      `json:"era"`       // Minimum era
	Invention   int      `json:"invention"` // Invention required to build

	// Yields per round.
	Production int `json:"production"`
	Food       int `json:"food"`
	Gold       int `json:"gold"`
	Science    int `json:"science"`
	Citizens   int `json:"citizens"` // Housing capacity

	GoodsProduction []GoodAmount `json:"goods_production"`
	GoodsCost       []GoodAmount `json:"goods_cost"`

	ProductionCost int `json:"production_cost"` // Production needed to build
	PurchaseCost   int `json:"purchase_cost"`   // Gold needed to buy outright
}

// Building is a placed instance of a BuildingType.
type Building struct {
	BuildingType
	Position world.CubeCoord `json:"position"`
	Active   bool            `json:"active"`
}

// Catalog holds the building definitions, indexed by type id.
type Catalog struct {
	types []BuildingType
}

// NewCatalog copies types into a catalog. Each definition's Type is set to
// its 1-based position.
func NewCatalog(types []BuildingType) *Catalog {
	c := &Catalog{types: make([]BuildingType, len(types))}
	for i, t := range types {
		t.Type = i + 1
		t.Images = slices.Clone(t.Images)
		t.GoodsProduction = slices.Clone(t.GoodsProduction)
		t.GoodsCost = slices.Clone(t.GoodsCost)
		c.types[i] = t
	}
	return c
}

// Len returns the number of definitions.
func (c *Catalog) Len() int {
	return len(c.types)
}

// Valid reports whether typeID names a definition (1..Len).
func (c *Catalog) Valid(typeID int) bool {
	return typeID >= 1 && typeID <= len(c.types)
}

// Type returns the definition for typeID.
func (c *Catalog) Type(typeID int) (BuildingType, bool) {
	if !c.Valid(typeID) {
		return BuildingType{}, false
	}
	return c.types[typeID-1], true
}

// Types returns a copy of all definitions in id order.
func (c *Catalog) Types() []BuildingType {
	return slices.Clone(c.types)
}

// NewBuilding instantiates an active building of typeID at pos.
func (c *Catalog) NewBuilding(typeID int, pos world.CubeCoord) (Building, bool) {
	def, ok := c.Type(typeID)
	if !ok {
		return Building{}, false
	}
	def.Images = slices.Clone(def.Images)
	def.GoodsProduction = slices.Clone(def.GoodsProduction)
	def.GoodsCost = slices.Clone(def.GoodsCost)
	return Building{BuildingType: def, Position: pos, Active: true}, true
}
