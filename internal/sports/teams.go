// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package sports

func defaultTeams() []Team {
	var teams []Team
	add := func(league string, entries ...[]string) {
		for _, e := range entries {
			teams = append(teams, Team{Name: e[0], League: league, Aliases: e[1:]})
		}
	}

	add("NBA",
		[]string{"Atlanta Hawks", "Hawks", "ATL"},
		[]string{"Boston Celtics", "Celtics", "BOS"},
		[]string{"Brooklyn Nets", "Nets", "BKN"},
		[]string{"Charlotte Hornets", "Hornets", "CHA"},
		[]string{"Chicago Bulls", "Bulls", "CHI"},
		[]string{"Cleveland Cavaliers", "Cavaliers", "Cavs", "CLE"},
		[]string{"Dallas Mavericks", "Mavericks", "Mavs", "DAL"},
		[]string{"Denver Nuggets", "Nuggets", "DEN"},
		[]string{"Detroit Pistons", "Pistons", "DET"},
		[]string{"Golden State Warriors", "Warriors", "GSW"},
		[]string{"Houston Rockets", "Rockets", "HOU"},
		[]string{"Indiana Pacers", "Pacers", "IND"},
		[]string{"Los Angeles Clippers", "LA Clippers", "Clippers", "LAC"},
		[]string{"Los Angeles Lakers", "LA Lakers", "Lakers", "LAL"},
		[]string{"Memphis Grizzlies", "Grizzlies", "MEM"},
		[]string{"Miami Heat", "Heat", "MIA"},
		[]string{"Milwaukee Bucks", "Bucks", "MIL"},
		[]string{"Minnesota Timberwolves", "Timberwolves", "Wolves", "MIN"},
		[]string{"New Orleans Pelicans", "Pelicans", "NOP"},
		[]string{"New York Knicks", "Knicks", "NYK"},
		[]string{"Oklahoma City Thunder", "Thunder", "OKC"},
		[]string{"Orlando Magic", "Magic", "ORL"},
		[]string{"Philadelphia 76ers", "76ers", "Sixers", "PHI"},
		[]string{"Phoenix Suns", "Suns", "PHX"},
		[]string{"Portland Trail Blazers", "Trail Blazers", "Blazers", "POR"},
		[]string{"Sacramento Kings", "SAC"},
		[]string{"San Antonio Spurs", "Spurs", "SAS"},
		[]string{"Toronto Raptors", "Raptors", "TOR"},
		[]string{"Utah Jazz", "Jazz", "UTA"},
		[]string{"Washington Wizards", "Wizards", "WAS"},
	)

	add("NFL",
		[]string{"Arizona Cardinals"},
		[]string{"Atlanta Falcons", "Falcons"},
		[]string{"Baltimore Ravens", "Ravens"},
		[]string{"Buffalo Bills", "Bills"},
		[]string{"Carolina Panthers"},
		[]string{"Chicago Bears", "Bears"},
		[]string{"Cincinnati Bengals", "Bengals"},
		[]string{"Cleveland Browns", "Browns"},
		[]string{"Dallas Cowboys", "Cowboys"},
		[]string{"Denver Broncos", "Broncos"},
		[]string{"Detroit Lions", "Lions"},
		[]string{"Green Bay Packers", "Packers"},
		[]string{"Houston Texans", "Texans"},
		[]string{"Indianapolis Colts", "Colts"},
		[]string{"Jacksonville Jaguars", "Jaguars"},
		[]string{"Kansas City Chiefs", "Chiefs"},
		[]string{"Las Vegas Raiders", "Raiders"},
		[]string{"Los Angeles Chargers", "Chargers"},
		[]string{"Los Angeles Rams", "Rams"},
		[]string{"Miami Dolphins", "Dolphins"},
		[]string{"Minnesota Vikings", "Vikings"},
		[]string{"New England Patriots", "Patriots"},
		[]string{"New Orleans Saints", "Saints"},
		[]string{"New York Giants"},
		[]string{"New York Jets"},
		[]string{"Philadelphia Eagles", "Eagles"},
		[]string{"Pittsburgh Steelers", "Steelers"},
		[]string{"San Francisco 49ers", "49ers", "Niners"},
		[]string{"Seattle Seahawks", "Seahawks"},
		[]string{"Tampa Bay Buccaneers", "Buccaneers", "Bucs"},
		[]string{"Tennessee Titans", "Titans"},
		[]string{"Washington Commanders", "Commanders"},
	)

	add("MLB",
		[]string{"Arizona Diamondbacks", "Diamondbacks", "D-backs"},
		[]string{"Atlanta Braves", "Braves"},
		[]string{"Baltimore Orioles", "Orioles"},
		[]string{"Boston Red Sox", "Red Sox"},
		[]string{"Chicago Cubs", "Cubs"},
		[]string{"Chicago White Sox", "White Sox"},
		[]string{"Cincinnati Reds", "Reds"},
		[]string{"Cleveland Guardians", "Guardians"},
		[]string{"Colorado Rockies", "Rockies"},
		[]string{"Detroit Tigers", "Tigers"},
		[]string{"Houston Astros", "Astros"},
		[]string{"Kansas City Royals", "Royals"},
		[]string{"Los Angeles Angels", "Angels"},
		[]string{"Los Angeles Dodgers", "Dodgers"},
		[]string{"Miami Marlins", "Marlins"},
		[]string{"Milwaukee Brewers", "Brewers"},
		[]string{"Minnesota Twins", "Twins"},
		[]string{"New York Mets", "Mets"},
		[]string{"New York Yankees", "Yankees"},
		[]string{"Oakland Athletics", "Athletics", "A's"},
		[]string{"Philadelphia Phillies", "Phillies"},
		[]string{"Pittsburgh Pirates", "Pirates"},
		[]string{"San Diego Padres", "Padres"},
		[]string{"San Francisco Giants"},
		[]string{"Seattle Mariners", "Mariners"},
		[]string{"St. Louis Cardinals"},
		[]string{"Tampa Bay Rays", "Rays"},
		[]string{"Texas Rangers"},
		[]string{"Toronto Blue Jays", "Blue Jays"},
		[]string{"Washington Nationals", "Nationals"},
	)

	add("NHL",
		[]string{"Anaheim Ducks", "Ducks"},
		[]string{"Boston Bruins", "Bruins"},
		[]string{"Buffalo Sabres", "Sabres"},
		[]string{"Calgary Flames", "Flames"},
		[]string{"Carolina Hurricanes", "Hurricanes", "Canes"},
		[]string{"Chicago Blackhawks", "Blackhawks"},
		[]string{"Colorado Avalanche", "Avalanche"},
		[]string{"Columbus Blue Jackets", "Blue Jackets"},
		[]string{"Dallas Stars", "Stars"},
		[]string{"Detroit Red Wings", "Red Wings"},
		[]string{"Edmonton Oilers", "Oilers"},
		[]string{"Florida Panthers"},
		[]string{"Los Angeles Kings"},
		[]string{"Minnesota Wild", "Wild"},
		[]string{"Montreal Canadiens", "Montréal Canadiens", "Canadiens", "Habs"},
		[]string{"Nashville Predators", "Predators", "Preds"},
		[]string{"New Jersey Devils", "Devils"},
		[]string{"New York Islanders", "Islanders"},
		[]string{"New York Rangers"},
		[]string{"Ottawa Senators", "Senators"},
		[]string{"Philadelphia Flyers", "Flyers"},
		[]string{"Pittsburgh Penguins", "Penguins"},
		[]string{"San Jose Sharks", "Sharks"},
		[]string{"Seattle Kraken", "Kraken"},
		[]string{"St. Louis Blues", "Blues"},
		[]string{"Tampa Bay Lightning", "Lightning"},
		[]string{"Toronto Maple Leafs", "Maple Leafs", "Leafs"},
		[]string{"Utah Hockey Club"},
		[]string{"Vancouver Canucks", "Canucks"},
		[]string{"Vegas Golden Knights", "Golden Knights"},
		[]string{"Washington Capitals", "Capitals", "Caps"},
		[]string{"Winnipeg Jets"},
	)

	add("EPL",
		[]string{"Arsenal", "Arsenal FC", "Gunners"},
		[]string{"Aston Villa", "Villa"},
		[]string{"Chelsea", "Chelsea FC"},
		[]string{"Everton", "Everton FC"},
		[]string{"Liverpool", "Liverpool FC"},
		[]string{"Manchester City", "Man City"},
		[]string{"Manchester United", "Man United", "Man Utd"},
		[]string{"Newcastle United", "Newcastle"},
		[]string{"Tottenham Hotspur", "Tottenham", "Spurs FC"},
		[]string{"West Ham United", "West Ham"},
	)

	add("LALIGA",
		[]string{"Real Madrid", "Real Madrid CF"},
		[]string{"Barcelona", "FC Barcelona", "Barça", "Barca"},
		[]string{"Atlético Madrid", "Atletico Madrid", "Atlético de Madrid", "Atleti"},
		[]string{"Sevilla", "Sevilla FC"},
	)

	add("BUNDESLIGA",
		[]string{"Bayern Munich", "FC Bayern München", "Bayern München", "Bayern"},
		[]string{"Borussia Dortmund", "Dortmund", "BVB"},
		[]string{"Bayer Leverkusen", "Leverkusen"},
		[]string{"RB Leipzig", "Leipzig"},
	)

	add("SERIEA",
		[]string{"Juventus", "Juventus FC", "Juve"},
		[]string{"Inter Milan", "Inter", "Internazionale"},
		[]string{"AC Milan", "Milan"},
		[]string{"Napoli", "SSC Napoli"},
		[]string{"Roma", "AS Roma"},
	)

	add("LIGUE1",
		[]string{"Paris Saint-Germain", "PSG", "Paris SG"},
		[]string{"Olympique de Marseille", "Marseille", "OM"},
	)

	return teams
}
