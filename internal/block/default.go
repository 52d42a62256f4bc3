package block

// baseBlockNames lists the base Classic catalog, index == block id. This
// is the fixed 0-49 id space every Classic client understands without any
// CPE negotiation.
var baseBlockNames = [...]string{
	0:  "Air",
	1:  "Stone",
	2:  "Grass",
	3:  "Dirt",
	4:  "Cobblestone",
	5:  "Planks",
	6:  "Sapling",
	7:  "Bedrock",
	8:  "FlowingWater",
	9:  "StationaryWater",
	10: "FlowingLava",
	11: "StationaryLava",
	12: "Sand",
	13: "Gravel",
	14: "GoldOre",
	15: "IronOre",
	16: "CoalOre",
	17: "Wood",
	18: "Leaves",
	19: "Sponge",
	20: "Glass",
	21: "RedCloth",
	22: "OrangeCloth",
	23: "YellowCloth",
	24: "ChartreuseCloth",
	25: "GreenCloth",
	26: "SpringGreenCloth",
	27: "CyanCloth",
	28: "CapriCloth",
	29: "UltramarineCloth",
	30: "VioletCloth",
	31: "PurpleCloth",
	32: "MagentaCloth",
	33: "RoseCloth",
	34: "DarkGrayCloth",
	35: "LightGrayCloth",
	36: "WhiteCloth",
	37: "Dandelion",
	38: "Rose",
	39: "BrownMushroom",
	40: "RedMushroom",
	41: "BlockGold",
	42: "BlockIron",
	43: "DoubleSlab",
	44: "Slab",
	45: "Bricks",
	46: "TNT",
	47: "Bookshelf",
	48: "MossyCobblestone",
	49: "Obsidian",
}

var liquidIDs = map[uint8]bool{
	8: true, 9: true, 10: true, 11: true,
}

// NewDefaultCatalog registers the base 0-49 block set. Liquid blocks are
// flagged so the player layer can apply the "allow liquid placement"
// config gate without the catalog knowing about config at all.
func NewDefaultCatalog() *Catalog {
	c := NewCatalog()
	for id, name := range baseBlockNames {
		b := &Block{
			ID:       uint8(id),
			Name:     name,
			IsLiquid: liquidIDs[uint8(id)],
		}
		if err := c.Register(b); err != nil {
			panic(err)
		}
	}
	return c
}
