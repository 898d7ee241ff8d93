package mockgateway

// Movie is a fixture movie as served by list and detail endpoints
type Movie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	GenreIDs    []int   `json:"genre_ids"`
	VoteAverage float64 `json:"vote_average"`
	Popularity  float64 `json:"popularity"`
	MediaType   string  `json:"media_type,omitempty"`
}

// Show is a fixture TV show
type Show struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Overview     string   `json:"overview"`
	FirstAirDate string   `json:"first_air_date"`
	GenreIDs     []int    `json:"genre_ids"`
	VoteAverage  float64  `json:"vote_average"`
	Popularity   float64  `json:"popularity"`
	MediaType    string   `json:"media_type,omitempty"`
	Seasons      []Season `json:"-"`
}

// Season holds the episodes of one season
type Season struct {
	SeasonNumber int       `json:"season_number"`
	Name         string    `json:"name"`
	Episodes     []Episode `json:"episodes"`
}

// Episode is one episode of a season
type Episode struct {
	EpisodeNumber int    `json:"episode_number"`
	Name          string `json:"name"`
	Runtime       int    `json:"runtime"`
}

// Fixtures is the catalogue the fixture upstream serves
type Fixtures struct {
	Movies []Movie
	Shows  []Show
}

// DefaultFixtures returns a small catalogue covering the ids the built-in contracts use
func DefaultFixtures() Fixtures {
	return Fixtures{
		Movies: []Movie{
			{ID: 24428, Title: "The Avengers", ReleaseDate: "2012-04-25", GenreIDs: []int{878, 28, 12}, VoteAverage: 7.7, Popularity: 98.1,
				Overview: "Earth's mightiest heroes must come together to stop Loki and his alien army."},
			{ID: 603, Title: "The Matrix", ReleaseDate: "1999-03-30", GenreIDs: []int{28, 878}, VoteAverage: 8.2, Popularity: 85.3,
				Overview: "A hacker learns the true nature of his reality."},
			{ID: 634649, Title: "Spider-Man: No Way Home", ReleaseDate: "2021-12-15", GenreIDs: []int{28, 12, 878}, VoteAverage: 7.9, Popularity: 120.4,
				Overview: "Peter Parker asks Doctor Strange for help once his identity is revealed."},
			{ID: 27205, Title: "Inception", ReleaseDate: "2010-07-15", GenreIDs: []int{28, 878, 12}, VoteAverage: 8.4, Popularity: 77.9,
				Overview: "A thief who steals secrets through dream-sharing technology."},
			{ID: 872585, Title: "Oppenheimer", ReleaseDate: "2023-07-19", GenreIDs: []int{18, 36}, VoteAverage: 8.1, Popularity: 110.2,
				Overview: "The story of J. Robert Oppenheimer and the atomic bomb."},
			{ID: 385687, Title: "Fast X", ReleaseDate: "2023-05-17", GenreIDs: []int{28, 80, 53}, VoteAverage: 7.1, Popularity: 95.6,
				Overview: "Dom Toretto and his family are targeted by a vengeful son."},
		},
		Shows: []Show{
			{ID: 1396, Name: "Breaking Bad", FirstAirDate: "2008-01-20", GenreIDs: []int{18, 80}, VoteAverage: 8.9, Popularity: 250.3,
				Overview: "A high school chemist diagnosed with cancer turns to manufacturing meth.",
				Seasons: []Season{
					{SeasonNumber: 1, Name: "Season 1", Episodes: []Episode{
						{EpisodeNumber: 1, Name: "Pilot", Runtime: 58},
						{EpisodeNumber: 2, Name: "Cat's in the Bag...", Runtime: 48},
						{EpisodeNumber: 3, Name: "...And the Bag's in the River", Runtime: 48},
						{EpisodeNumber: 4, Name: "Cancer Man", Runtime: 48},
						{EpisodeNumber: 5, Name: "Gray Matter", Runtime: 48},
						{EpisodeNumber: 6, Name: "Crazy Handful of Nothin'", Runtime: 48},
						{EpisodeNumber: 7, Name: "A No-Rough-Stuff-Type Deal", Runtime: 48},
					}},
					{SeasonNumber: 2, Name: "Season 2", Episodes: []Episode{
						{EpisodeNumber: 1, Name: "Seven Thirty-Seven", Runtime: 47},
						{EpisodeNumber: 2, Name: "Grilled", Runtime: 46},
					}},
				}},
			{ID: 1399, Name: "Game of Thrones", FirstAirDate: "2011-04-17", GenreIDs: []int{10765, 18, 10759}, VoteAverage: 8.4, Popularity: 310.8,
				Overview: "Seven noble families fight for control of the mythical land of Westeros.",
				Seasons: []Season{
					{SeasonNumber: 1, Name: "Season 1", Episodes: []Episode{
						{EpisodeNumber: 1, Name: "Winter Is Coming", Runtime: 62},
						{EpisodeNumber: 2, Name: "The Kingsroad", Runtime: 56},
					}},
				}},
			{ID: 66732, Name: "Stranger Things", FirstAirDate: "2016-07-15", GenreIDs: []int{18, 10765, 9648}, VoteAverage: 8.6, Popularity: 180.5,
				Overview: "A young boy vanishes and a small town uncovers a mystery."},
		},
	}
}
