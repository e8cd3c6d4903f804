package models

// TVMazeImage is the image object attached to a TVMaze show; it is null for shows without artwork
type TVMazeImage struct {
	Medium   string `json:"medium"`
	Original string `json:"original"`
}

// TVMazeShow is the subset of the TVMaze show resource ShowFinder reads
type TVMazeShow struct {
	ID      int          `json:"id"`
	Name    string       `json:"name"`
	Summary string       `json:"summary"`
	Image   *TVMazeImage `json:"image"`
}

// TVMazeSearchResult is one element of the /search/shows response array
type TVMazeSearchResult struct {
	Score float64    `json:"score"`
	Show  TVMazeShow `json:"show"`
}

// TVMazeEpisode is one element of the /shows/{id}/episodes response array
type TVMazeEpisode struct {
	ID     int        `json:"id"`
	Name   string     `json:"name"`
	Season FlexNumber `json:"season"`
	Number FlexNumber `json:"number"`
}
