package hints

import (
	"time"
)

// DestinationProfile is static reference data consulted by the hint generator.
// Loaded once at process start, read-only afterwards, safe for concurrent readers.
type DestinationProfile struct {
	Country       string
	BestMonths    []time.Month
	SeasonNote    string            // why the best months are the best months
	BudgetTiers   map[string]string // tier -> rough daily spend guidance
	MustSee       []string
	Neighborhoods []string
	InsiderTips   []string
}

// DestinationKB is an in-memory, exact-match (case-sensitive) lookup of
// destination reference data.
type DestinationKB struct {
	profiles map[string]DestinationProfile
}

// NewDestinationKB loads the built-in destination profiles.
func NewDestinationKB() *DestinationKB {
	return &DestinationKB{profiles: builtinProfiles}
}

// Lookup returns the profile for an exact city name match. Unknown
// destinations return ok=false; callers fall back to generic hints.
func (kb *DestinationKB) Lookup(city string) (DestinationProfile, bool) {
	p, ok := kb.profiles[city]
	return p, ok
}

// Known reports whether the knowledge base has a profile for the city.
func (kb *DestinationKB) Known(city string) bool {
	_, ok := kb.profiles[city]
	return ok
}

// Cities returns the set of city names the extractor treats as
// high-confidence destinations.
func (kb *DestinationKB) Cities() []string {
	out := make([]string, 0, len(kb.profiles))
	for name := range kb.profiles {
		out = append(out, name)
	}
	return out
}

var builtinProfiles = map[string]DestinationProfile{
	"Paris": {
		Country:    "France",
		BestMonths: []time.Month{time.April, time.May, time.June, time.September, time.October},
		SeasonNote: "mild weather and long evenings, before the August closures",
		BudgetTiers: map[string]string{
			"budget":    "€90-140/day staying in the 10th-11th and eating at boulangeries",
			"mid-range": "€180-280/day with a 3-star hotel near the Marais",
			"luxury":    "€450+/day for palace hotels and starred dining",
		},
		MustSee:       []string{"Louvre", "Musée d'Orsay", "Sainte-Chapelle", "Montmartre"},
		Neighborhoods: []string{"Le Marais", "Saint-Germain-des-Prés", "Canal Saint-Martin", "Latin Quarter"},
		InsiderTips: []string{
			"Book Louvre tickets for the Wednesday or Friday evening openings to skip the worst crowds",
			"Most museums are free on the first Sunday of the month",
		},
	},
	"Tokyo": {
		Country:    "Japan",
		BestMonths: []time.Month{time.March, time.April, time.October, time.November},
		SeasonNote: "cherry blossoms in spring, clear skies and autumn color in fall",
		BudgetTiers: map[string]string{
			"budget":    "¥10,000-16,000/day with business hotels and konbini meals",
			"mid-range": "¥25,000-40,000/day near Shinjuku or Ueno",
			"luxury":    "¥80,000+/day for ryokan stays and omakase dining",
		},
		MustSee:       []string{"Senso-ji", "Meiji Shrine", "Shibuya Crossing", "teamLab Planets"},
		Neighborhoods: []string{"Shinjuku", "Shimokitazawa", "Asakusa", "Nakameguro"},
		InsiderTips: []string{
			"Buy a Suica card on arrival; it works on nearly every train, bus and vending machine",
			"Department store basements (depachika) are the best cheap lunch in the city",
		},
	},
	"Rome": {
		Country:    "Italy",
		BestMonths: []time.Month{time.April, time.May, time.September, time.October},
		SeasonNote: "warm but not scorching, and lighter crowds than midsummer",
		BudgetTiers: map[string]string{
			"budget":    "€80-120/day with guesthouses in San Lorenzo and trattoria meals",
			"mid-range": "€150-250/day near Monti or Trastevere",
			"luxury":    "€400+/day for rooftop hotels by the Spanish Steps",
		},
		MustSee:       []string{"Colosseum", "Pantheon", "Vatican Museums", "Galleria Borghese"},
		Neighborhoods: []string{"Trastevere", "Monti", "Testaccio", "Prati"},
		InsiderTips: []string{
			"Galleria Borghese requires timed tickets; reserve at least a week out",
			"The Pantheon is quietest right at opening",
		},
	},
	"Barcelona": {
		Country:    "Spain",
		BestMonths: []time.Month{time.May, time.June, time.September, time.October},
		SeasonNote: "beach weather without the August humidity and closures",
		BudgetTiers: map[string]string{
			"budget":    "€70-110/day with hostels in Gràcia and menú del día lunches",
			"mid-range": "€140-220/day in the Eixample",
			"luxury":    "€350+/day for seafront five-stars",
		},
		MustSee:       []string{"Sagrada Família", "Park Güell", "Gothic Quarter", "Casa Batlló"},
		Neighborhoods: []string{"Gràcia", "El Born", "Barceloneta", "Eixample"},
		InsiderTips: []string{
			"Sagrada Família sells out days ahead; book the tower add-on online",
			"Locals eat dinner after 21:00; early tables are easy to get",
		},
	},
	"London": {
		Country:    "United Kingdom",
		BestMonths: []time.Month{time.May, time.June, time.September},
		SeasonNote: "the driest stretch of the year with parks at their best",
		BudgetTiers: map[string]string{
			"budget":    "£90-140/day with chain hotels outside Zone 1",
			"mid-range": "£180-280/day near South Bank or Shoreditch",
			"luxury":    "£450+/day in Mayfair",
		},
		MustSee:       []string{"British Museum", "Tower of London", "Borough Market", "Westminster"},
		Neighborhoods: []string{"Shoreditch", "Notting Hill", "South Bank", "Camden"},
		InsiderTips: []string{
			"Most of the big museums are free; donate instead of queueing for paid shows",
			"Book theatre day seats in person for the cheapest stalls tickets",
		},
	},
	"New York": {
		Country:    "United States",
		BestMonths: []time.Month{time.May, time.June, time.September, time.October},
		SeasonNote: "comfortable walking weather between the winter cold and summer swelter",
		BudgetTiers: map[string]string{
			"budget":    "$150-220/day staying in Long Island City or Harlem",
			"mid-range": "$280-450/day in Midtown or Brooklyn",
			"luxury":    "$700+/day for Central Park views",
		},
		MustSee:       []string{"Central Park", "The Met", "High Line", "Brooklyn Bridge"},
		Neighborhoods: []string{"West Village", "Williamsburg", "Lower East Side", "Astoria"},
		InsiderTips: []string{
			"Take the Staten Island Ferry for free skyline views instead of a paid cruise",
			"Same-day TKTS booths sell Broadway seats at up to half price",
		},
	},
	"Bangkok": {
		Country:    "Thailand",
		BestMonths: []time.Month{time.November, time.December, time.January, time.February},
		SeasonNote: "the cool dry season; monsoon rains taper off by November",
		BudgetTiers: map[string]string{
			"budget":    "฿1,200-2,000/day with guesthouses and street food",
			"mid-range": "฿3,000-5,500/day along the Sukhumvit line",
			"luxury":    "฿10,000+/day for riverside resorts",
		},
		MustSee:       []string{"Grand Palace", "Wat Arun", "Chatuchak Market", "Jim Thompson House"},
		Neighborhoods: []string{"Sukhumvit", "Riverside", "Ari", "Chinatown"},
		InsiderTips: []string{
			"Use the river express boats to skip traffic between the old town temples",
			"Dress codes at the Grand Palace are enforced; bring covered shoulders and knees",
		},
	},
	"Bali": {
		Country:    "Indonesia",
		BestMonths: []time.Month{time.May, time.June, time.July, time.August, time.September},
		SeasonNote: "the dry season, with the calmest seas for boat trips",
		BudgetTiers: map[string]string{
			"budget":    "Rp400k-700k/day in Ubud homestays",
			"mid-range": "Rp1.2m-2.5m/day in Canggu or Sanur",
			"luxury":    "Rp5m+/day for cliffside villas in Uluwatu",
		},
		MustSee:       []string{"Tegalalang rice terraces", "Uluwatu Temple", "Mount Batur sunrise", "Nusa Penida"},
		Neighborhoods: []string{"Ubud", "Canggu", "Sanur", "Uluwatu"},
		InsiderTips: []string{
			"Hire a driver for day trips; distances look short but roads are slow",
			"Temples lend sarongs at the entrance, no need to buy one outside",
		},
	},
}
