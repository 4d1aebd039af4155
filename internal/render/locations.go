package render

type city struct {
	Name  string
	Areas []string
}

type state struct {
	Name   string
	Cities []city
}

// locations is the state → city → area table behind the search cascade.
var locations = []state{
	{"Gujarat", []city{
		{"Ahmedabad", []string{"Navrangpura", "Bapunagar", "Vastral", "SG Highway"}},
		{"Surat", []string{"Adajan", "Vesu", "Katargam"}},
		{"Vadodara", []string{"Alkapuri", "Gotri", "Manjalpur"}},
		{"Rajkot", []string{"Kalawad Road", "150 Feet Ring Road"}},
	}},
	{"Maharashtra", []city{
		{"Mumbai", []string{"Andheri", "Bandra", "Dadar"}},
		{"Pune", []string{"Kothrud", "Wakad", "Hinjewadi"}},
	}},
	{"Rajasthan", []city{
		{"Jaipur", []string{"Vaishali Nagar", "Malviya Nagar"}},
	}},
	{"Madhya Pradesh", []city{
		{"Indore", []string{"Vijay Nagar", "Palasia"}},
		{"Bhopal", []string{"Arera Colony", "Kolar"}},
	}},
}

var PropertyTypes = []string{"Flat", "Villa", "Bungalow", "Plot", "Shop", "Office"}

func States() []string {
	out := make([]string, 0, len(locations))
	for _, s := range locations {
		out = append(out, s.Name)
	}
	return out
}

// Cities lists the cities of st; nil for an unknown state.
func Cities(st string) []string {
	for _, s := range locations {
		if s.Name != st {
			continue
		}
		out := make([]string, 0, len(s.Cities))
		for _, c := range s.Cities {
			out = append(out, c.Name)
		}
		return out
	}
	return nil
}

func Areas(st, cityName string) []string {
	for _, s := range locations {
		if s.Name != st {
			continue
		}
		for _, c := range s.Cities {
			if c.Name == cityName {
				return append([]string(nil), c.Areas...)
			}
		}
	}
	return nil
}
