package skyblock

// Crop is one of the ten farming products a Jacob contest can run on.
// The numeric values are part of the storage contract, do not reorder.
type Crop int

const (
	CropCactus Crop = iota
	CropCarrot
	CropCocoaBeans
	CropMelon
	CropMushroom
	CropNetherWart
	CropPotato
	CropPumpkin
	CropSugarCane
	CropWheat
)

// cropTags maps the raw item tags used inside contest keys and the
// crafted-generator tokens of the upstream API. INK_SACK:3 contains a
// colon, which is why contest keys are split on the first two colons only.
var cropTags = map[string]Crop{
	"CACTUS":              CropCactus,
	"CARROT_ITEM":         CropCarrot,
	"INK_SACK:3":          CropCocoaBeans,
	"MELON":               CropMelon,
	"MUSHROOM_COLLECTION": CropMushroom,
	"NETHER_STALK":        CropNetherWart,
	"POTATO_ITEM":         CropPotato,
	"PUMPKIN":             CropPumpkin,
	"SUGAR_CANE":          CropSugarCane,
	"WHEAT":               CropWheat,
}

var cropNames = map[Crop]string{
	CropCactus:     "Cactus",
	CropCarrot:     "Carrot",
	CropCocoaBeans: "Cocoa Beans",
	CropMelon:      "Melon",
	CropMushroom:   "Mushroom",
	CropNetherWart: "Nether Wart",
	CropPotato:     "Potato",
	CropPumpkin:    "Pumpkin",
	CropSugarCane:  "Sugar Cane",
	CropWheat:      "Wheat",
}

var cropRawTags = func() map[Crop]string {
	m := make(map[Crop]string, len(cropTags))
	for tag, crop := range cropTags {
		m[crop] = tag
	}
	return m
}()

var cropsByName = func() map[string]Crop {
	m := make(map[string]Crop, len(cropNames))
	for crop, name := range cropNames {
		m[name] = crop
	}
	return m
}()

// CropFromTag resolves a raw item tag (e.g. "NETHER_STALK") to a Crop.
func CropFromTag(tag string) (Crop, bool) {
	crop, ok := cropTags[tag]
	return crop, ok
}

// CropFromName resolves a display name (e.g. "Nether Wart") to a Crop.
func CropFromName(name string) (Crop, bool) {
	crop, ok := cropsByName[name]
	return crop, ok
}

// Name returns the display name used in API responses and calendar
// submissions. Unknown values yield an empty string.
func (c Crop) Name() string {
	return cropNames[c]
}

// Tag returns the raw item tag used in contest keys.
func (c Crop) Tag() string {
	return cropRawTags[c]
}

func (c Crop) Valid() bool {
	_, ok := cropNames[c]
	return ok
}
