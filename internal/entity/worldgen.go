package entity

import (
	"math"
	"math/rand"

	"chosenoffset.com/nightwood/internal/inventory"
	"chosenoffset.com/nightwood/internal/terrain"
)

// Population describes what world generation scatters and where.
type Population struct {
	Wolves    int `yaml:"wolves" json:"wolves"`
	Spiders   int `yaml:"spiders" json:"spiders"`
	Chests    int `yaml:"chests" json:"chests"`
	Rocks     int `yaml:"rocks" json:"rocks"`
	Mushrooms int `yaml:"mushrooms" json:"mushrooms"`
	Trees     int `yaml:"trees" json:"trees"`

	// Radius bounds placement to |x|, |z| <= Radius.
	Radius float64 `yaml:"radius" json:"radius"`
	// ClearRadius keeps creatures, chests and trees out of the spawn clearing.
	ClearRadius float64 `yaml:"clear_radius" json:"clear_radius"`
	// StarterChest places one chest straight ahead of the spawn point.
	StarterChest bool `yaml:"starter_chest" json:"starter_chest"`

	Wolf   Gait `yaml:"wolf" json:"wolf"`
	Spider Gait `yaml:"spider" json:"spider"`
}

// DefaultPopulation mirrors the shipped night forest.
func DefaultPopulation() Population {
	return Population{
		Wolves:       4,
		Spiders:      6,
		Chests:       5,
		Rocks:        40,
		Mushrooms:    60,
		Trees:        80,
		Radius:       55,
		ClearRadius:  8,
		StarterChest: true,
		Wolf:         DefaultWolfGait(),
		Spider:       DefaultSpiderGait(),
	}
}

// starterChestDistance is how far ahead of spawn (+Z) the starter chest sits.
// It is inside the clearing; scattered chests are not.
const starterChestDistance = 4.0

// Generate fills a new registry from pop. The same seed always yields the
// same world.
func Generate(pop Population, field terrain.Field, seed int64) *Registry {
	rng := rand.New(rand.NewSource(seed))
	reg := NewRegistry(field, rng)

	if pop.StarterChest {
		reg.Spawn(NewChest(ChestCapacity, DefaultLoot()), 0, starterChestDistance)
	}

	for i := 0; i < pop.Trees; i++ {
		x, z := scatter(rng, pop.Radius, pop.ClearRadius)
		reg.Spawn(NewTree(rng), x, z)
	}
	for i := 0; i < pop.Rocks; i++ {
		x, z := scatter(rng, pop.Radius, 0)
		reg.Spawn(NewRock(rng), x, z)
	}
	for i := 0; i < pop.Mushrooms; i++ {
		x, z := scatter(rng, pop.Radius, 0)
		reg.Spawn(NewMushroom(rng), x, z)
	}
	for i := 0; i < pop.Chests; i++ {
		x, z := scatter(rng, pop.Radius, pop.ClearRadius)
		reg.Spawn(NewChest(ChestCapacity, randomLoot(rng)), x, z)
	}
	for i := 0; i < pop.Wolves; i++ {
		x, z := scatter(rng, pop.Radius, pop.ClearRadius)
		reg.Spawn(NewWolf(pop.Wolf, rng), x, z)
	}
	for i := 0; i < pop.Spiders; i++ {
		x, z := scatter(rng, pop.Radius, pop.ClearRadius)
		reg.Spawn(NewSpider(pop.Spider, rng), x, z)
	}
	return reg
}

// scatter picks a uniform point in the square of half-width radius, outside
// the clearing around the origin.
func scatter(rng *rand.Rand, radius, clear float64) (float64, float64) {
	if clear >= radius {
		clear = 0
	}
	for {
		x := (rng.Float64()*2 - 1) * radius
		z := (rng.Float64()*2 - 1) * radius
		if math.Hypot(x, z) >= clear {
			return x, z
		}
	}
}

func randomLoot(rng *rand.Rand) []inventory.Item {
	loot := DefaultLoot()
	if rng.Float64() < 0.5 {
		loot = append(loot, inventory.Item{Name: "Bread", Icon: "icon_bread", Type: inventory.TypeMisc})
	}
	return loot
}
