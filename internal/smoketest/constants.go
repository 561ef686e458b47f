package smoketest

import "time"

// Defaults applied by Normalize.
const (
	DefaultBaseURL   = "http://localhost:9080"
	DefaultPath      = "/fish"
	DefaultTimeout   = 30 * time.Second
	DefaultBatchSize = 8
	DefaultWorkers   = 4
)

// Round-trip fixture.
const (
	roundTripName      = "Coelacanth"
	roundTripSell      = 15000
	roundTripNewSell   = 12000
	roundTripShadow    = "huge"
	roundTripWhere     = "sea (raining)"
	batchShadow        = "medium"
	batchWhere         = "river"
	batchNamePrefix    = "Smoke"
	runIDLength        = 8
	maxResponseLogSize = 512
)

// Expected response texts.
const (
	msgAdded          = "Fish added successfully!"
	msgUpdated        = "Fish updated successfully!"
	msgDeleted        = "Fish deleted successfully!"
	msgMissingFields  = "All fields are required."
	msgMethodNotAllow = "Method not allowed"
)

// batchSpecies are the base names of the ordering batch. Each starts with a
// different letter so their order is the same under any collation.
var batchSpecies = []string{
	"Arowana", "Bitterling", "Carp", "Dab", "Eel", "Football", "Gar", "Herring",
	"Ide", "Jellyfish", "Koi", "Loach", "Mackerel", "Napoleonfish", "Oarfish", "Pike",
	"Queenfish", "Ranchu", "Saury", "Tuna", "Unagi", "Viperfish", "Wrasse", "Yellowtail",
}
