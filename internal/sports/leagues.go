// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package sports

import "time"

func defaultLeagues() []League {
	return []League{
		{Code: "WNBA", Sport: Basketball, Keywords: []string{"WNBA"}, Women: true},
		{Code: "NBA", Sport: Basketball, Keywords: []string{"NBA"}},
		{Code: "NCAAB", Sport: Basketball, Keywords: []string{"NCAAB", "college basketball", "march madness"}},
		{Code: "EUROLEAGUE", Sport: Basketball, Keywords: []string{"EuroLeague"}},
		{Code: "NFL", Sport: Football, Keywords: []string{"NFL", "Super Bowl"}},
		{Code: "NCAAF", Sport: Football, Keywords: []string{"NCAAF", "college football"}},
		{Code: "MLB", Sport: Baseball, Keywords: []string{"MLB", "World Series"}},
		{Code: "NHL", Sport: Hockey, Keywords: []string{"NHL", "Stanley Cup"}},
		{Code: "NWSL", Sport: Soccer, Keywords: []string{"NWSL"}, Women: true},
		{Code: "MLS", Sport: Soccer, Keywords: []string{"MLS"}},
		{Code: "EPL", Sport: Soccer, Keywords: []string{"Premier League", "EPL"}},
		{Code: "LALIGA", Sport: Soccer, Keywords: []string{"La Liga", "LaLiga"}},
		{Code: "BUNDESLIGA", Sport: Soccer, Keywords: []string{"Bundesliga"}},
		{Code: "SERIEA", Sport: Soccer, Keywords: []string{"Serie A"}},
		{Code: "LIGUE1", Sport: Soccer, Keywords: []string{"Ligue 1"}},
		{Code: "UCL", Sport: Soccer, Keywords: []string{"Champions League", "UCL"}},
		{Code: "UEL", Sport: Soccer, Keywords: []string{"Europa League", "UEL"}},
		{Code: "UECL", Sport: Soccer, Keywords: []string{"Conference League", "UECL"}},
		{Code: "LIBERTADORES", Sport: Soccer, Keywords: []string{"Copa Libertadores", "Libertadores"}},
		{Code: "SUDAMERICANA", Sport: Soccer, Keywords: []string{"Copa Sudamericana", "Sudamericana"}},
		{Code: "UFC", Sport: MMA, Keywords: []string{"UFC"}},
		{Code: "BELLATOR", Sport: MMA, Keywords: []string{"Bellator"}},
		{Code: "PFL", Sport: MMA, Keywords: []string{"PFL"}},
		{Code: "F1", Sport: Motorsport, Keywords: []string{"Formula 1", "Formula One", "F1"}},
		{Code: "NASCAR", Sport: Motorsport, Keywords: []string{"NASCAR"}},
		{Code: "ATP", Sport: Tennis, Keywords: []string{"ATP", "Wimbledon", "US Open Tennis"}},
		{Code: "WTA", Sport: Tennis, Keywords: []string{"WTA"}, Women: true},
		{Code: "PGA", Sport: Golf, Keywords: []string{"PGA", "The Masters"}},
		{Code: "SIXNATIONS", Sport: Rugby, Keywords: []string{"Six Nations"}},
		{Code: "IPL", Sport: Cricket, Keywords: []string{"IPL"}},
	}
}

func defaultLeagueAliases() []LeagueAlias {
	return []LeagueAlias{
		{Sport: Football, Term: "NCAAF", Expansions: []string{"college football", "NCAA football", "CFB"}},
		{Sport: Basketball, Term: "NCAAB", Expansions: []string{"college basketball", "NCAA basketball", "CBB", "march madness"}},
		{Sport: Football, Term: "NCAA", Expansions: []string{"college football", "NCAAF"}},
		{Sport: Basketball, Term: "NCAA", Expansions: []string{"college basketball", "NCAAB"}},
		{Sport: Soccer, Term: "EPL", Expansions: []string{"Premier League", "English Premier League"}},
		{Sport: Soccer, Term: "UCL", Expansions: []string{"Champions League", "UEFA Champions League"}},
		{Sport: Soccer, Term: "UEL", Expansions: []string{"Europa League", "UEFA Europa League"}},
		{Sport: Soccer, Term: "UECL", Expansions: []string{"Conference League", "UEFA Conference League"}},
		{Sport: Soccer, Term: "La Liga", Expansions: []string{"LaLiga"}},
		{Sport: Motorsport, Term: "F1", Expansions: []string{"Formula 1", "Formula One"}},
	}
}

func defaultFamilies() []Family {
	return []Family{
		{
			Name: "uefa",
			Tiers: []Tier{
				{Level: 1, Name: "Champions League", Markers: []string{"champions league", "ucl"}},
				{Level: 2, Name: "Europa League", Markers: []string{"europa league", "uel"}},
				{Level: 3, Name: "Conference League", Markers: []string{"conference league", "uecl"}},
			},
		},
		{
			Name: "conmebol",
			Tiers: []Tier{
				{Level: 1, Name: "Copa Libertadores", Markers: []string{"libertadores"}},
				{Level: 2, Name: "Copa Sudamericana", Markers: []string{"sudamericana"}},
			},
		},
	}
}

func defaultSportsChannels() []string {
	return []string{
		"espn", "fox sports", "fs1", "fs2", "nba tv", "nfl network", "nfl redzone", "mlb network",
		"nhl network", "sky sport", "bt sport", "tnt sports", "bein", "dazn", "eurosport",
		"sportsnet", "tsn", "cbs sports", "golf channel", "tennis channel", "sec network",
		"acc network", "big ten network", "nbc sports", "peacock", "sport1", "sportdigital",
		"movistar deportes", "canal+ sport", "rmc sport", "setanta", "supersport",
	}
}

func defaultSportPadding() map[string]time.Duration {
	return map[string]time.Duration{
		Baseball:   60 * time.Minute,
		Tennis:     60 * time.Minute,
		Cricket:    60 * time.Minute,
		Golf:       45 * time.Minute,
		Football:   30 * time.Minute,
		MMA:        30 * time.Minute,
		Boxing:     30 * time.Minute,
		Basketball: 20 * time.Minute,
		Hockey:     20 * time.Minute,
		Motorsport: 20 * time.Minute,
		Rugby:      15 * time.Minute,
		Soccer:     15 * time.Minute,
	}
}

func defaultSportCategories() map[string]string {
	return map[string]string{
		"basketball":         Basketball,
		"american football":  Football,
		"football":           Football,
		"baseball":           Baseball,
		"hockey":             Hockey,
		"ice hockey":         Hockey,
		"soccer":             Soccer,
		"fußball":            Soccer,
		"fussball":           Soccer,
		"futbol":             Soccer,
		"mma":                MMA,
		"mixed martial arts": MMA,
		"boxing":             Boxing,
		"motorsport":         Motorsport,
		"motor racing":       Motorsport,
		"auto racing":        Motorsport,
		"tennis":             Tennis,
		"golf":               Golf,
		"rugby":              Rugby,
		"cricket":            Cricket,
	}
}
