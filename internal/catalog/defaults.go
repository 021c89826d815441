package catalog

// Default returns the built-in reference data. Specialist ids match the
// upstream portal directory.
func Default() *Catalog {
	c, err := New(defaultSalons, defaultSpecialists, defaultServices)
	if err != nil {
		panic(err)
	}
	return c
}

var defaultSalons = []Salon{
	{ID: "krakow-florianska", City: "Kraków", Address: "ul. Floriańska 12", Postal: "31-019", Phone: "+48 12 345 67 89"},
	{ID: "krakow-bronowice", City: "Kraków", Address: "ul. Stawowa 61", Postal: "31-346", Phone: "+48 12 636 00 11"},
	{ID: "wieliczka", City: "Wieliczka", Address: "Rynek Górny 5", Postal: "32-020", Phone: "+48 12 222 33 44"},
}

var defaultSpecialists = []Specialist{
	{ID: "anna-nowak", Name: "Anna Nowak", Title: "Optometrystka", SalonID: "krakow-florianska"},
	{ID: "marek-lewandowski", Name: "Marek Lewandowski", Title: "Terapeuta widzenia", SalonID: "krakow-florianska", RestrictedOnly: true},
	{ID: "katarzyna-zielinska", Name: "Katarzyna Zielińska", Title: "Optometrystka", SalonID: "krakow-bronowice"},
	{ID: "ewa-kaminska", Name: "Ewa Kamińska", Title: "Optyk okularowy", SalonID: "krakow-bronowice"},
	{ID: "piotr-wisniewski", Name: "Piotr Wiśniewski", Title: "Optometrysta", SalonID: "wieliczka"},
}

var defaultServices = []Service{
	{
		ID:                "badanie-wzroku",
		Name:              "Badanie wzroku",
		Description:       "Komputerowe i subiektywne badanie ostrości wzroku z doborem korekcji.",
		AvailableInSalons: []string{"krakow-florianska", "krakow-bronowice", "wieliczka"},
	},
	{
		ID:                "dobor-soczewek",
		Name:              "Dobór soczewek kontaktowych",
		Description:       "Badanie, dobór i nauka zakładania soczewek kontaktowych.",
		AvailableInSalons: []string{"krakow-florianska", "krakow-bronowice"},
	},
	{
		ID:                "terapia-widzenia",
		Name:              "Terapia widzenia",
		Description:       "Diagnostyka widzenia obuocznego i ćwiczenia terapeutyczne.",
		AvailableInSalons: []string{"krakow-florianska"},
		SpecialistIDs:     []string{"marek-lewandowski"},
	},
	{
		ID:                   "badanie-dzieci",
		Name:                 "Badanie wzroku dziecka",
		Description:          "Badanie dla dzieci od 4. roku życia, termin ustalany telefonicznie.",
		AvailableInSalons:    []string{"krakow-florianska", "krakow-bronowice", "wieliczka"},
		RequiresPhoneBooking: true,
	},
}
