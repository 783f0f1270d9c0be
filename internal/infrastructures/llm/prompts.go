package llm

import "text/template"

type promptData struct {
	TripDetails    string
	FlightOptions  string
	Travelers      string
	TravelClass    string
	Destinations   []destination
	Research       string
	FlightAnalysis string
	Activities     string
	Restaurants    string
}

type destination struct {
	City     string
	Country  string
	Arrival  string
	StayDays int
	Hotel    string
}

var funcs = template.FuncMap{
	"plural": func(n int, word string) string {
		if n == 1 {
			return word
		}
		return word + "s"
	},
}

func mustPrompt(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(funcs).Parse(text))
}

const destinationsBlock = `{{range .Destinations}}- {{.City}}{{if .Country}}, {{.Country}}{{end}}: arriving {{.Arrival}}{{if .StayDays}}, staying {{.StayDays}} {{plural .StayDays "day"}}{{end}}{{if .Hotel}}, hotel near {{.Hotel}}{{end}}
{{end}}`

var flightAnalystPrompt = mustPrompt("flight_analyst", `You are an experienced flight analyst at a travel agency.
Review the flight options found for the trip below and explain them to the traveler.
For each option give the price, the total travel time, the number of stops and who it suits best.
Finish with one clear recommendation. Use only the flights listed, do not invent any.

Trip:
{{.TripDetails}}

Flight options:
{{.FlightOptions}}
`)

var activityPlannerPrompt = mustPrompt("activity_planner", `You are a personalized activity planner who knows every destination well.
Plan activities for {{.Travelers}} traveling in {{.TravelClass}} class.
Respect the number of days spent at each stop and keep the first and last day light around the flights.
For each activity give the name, a short description, the location, the day, why it suits the group, and a rating when the research mentions one.

Destinations:
`+destinationsBlock+`
Web research:
{{if .Research}}{{.Research}}{{else}}(none available, rely on well known attractions){{end}}
`)

var restaurantScoutPrompt = mustPrompt("restaurant_scout", `You are a restaurant scout who finds places locals love.
Suggest restaurants for {{.Travelers}}: at least one for lunch and one for dinner per day at each destination.
Prefer places close to the hotel area. Give the name, cuisine, price level, neighborhood and why it is worth a visit.

Destinations:
`+destinationsBlock+`
Web research:
{{if .Research}}{{.Research}}{{else}}(none available, rely on well known restaurants){{end}}
`)

var itineraryCompilerPrompt = mustPrompt("itinerary_compiler", `You are an itinerary compiler. Write the final day-by-day travel itinerary.
Start with a short trip overview, then the flight summary, then one section per day with the activities
and restaurants for that day. Keep to the stay lengths below. End with practical tips.
Write plain text without markdown tables.

Trip:
{{.TripDetails}}

Destinations:
`+destinationsBlock+`
Flight analysis:
{{.FlightAnalysis}}

Planned activities:
{{.Activities}}

Restaurant suggestions:
{{.Restaurants}}
`)
