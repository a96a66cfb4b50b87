package noise

// Biome names produced by Climate.Biome.
const (
	BiomeTundra     = "tundra"
	BiomeTaiga      = "taiga"
	BiomeGrassland  = "grassland"
	BiomeForest     = "forest"
	BiomeDesert     = "desert"
	BiomeSavanna    = "savanna"
	BiomeSwamp      = "swamp"
	BiomeRainforest = "rainforest"
)

// Climate pairs temperature and moisture fields.
type Climate struct {
	Temperature *Field
	Moisture    *Field
}

func NewClimate(seed string, p Params) *Climate {
	return &Climate{
		Temperature: NewField(seed, "temperature", p),
		Moisture:    NewField(seed, "moisture", p),
	}
}

// Sample returns (temperature, moisture), both in [0, 1].
func (c *Climate) Sample(x, y float64) (float64, float64) {
	return c.Temperature.Warped(x, y), c.Moisture.Warped(x, y)
}

func (c *Climate) Biome(x, y float64) string {
	return Classify(c.Sample(x, y))
}

// Classify maps temperature and moisture to a biome name.
func Classify(temp, moist float64) string {
	switch {
	case temp < 0.3:
		if moist < 0.5 {
			return BiomeTundra
		}
		return BiomeTaiga
	case temp < 0.6:
		switch {
		case moist < 0.35:
			return BiomeGrassland
		case moist < 0.7:
			return BiomeForest
		default:
			return BiomeSwamp
		}
	default:
		switch {
		case moist < 0.3:
			return BiomeDesert
		case moist < 0.6:
			return BiomeSavanna
		default:
			return BiomeRainforest
		}
	}
}
