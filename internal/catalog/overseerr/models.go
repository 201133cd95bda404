package overseerr

// searchResponse is the Overseerr /search response envelope.
type searchResponse struct {
	Page         int            `json:"page"`
	TotalPages   int            `json:"totalPages"`
	TotalResults int            `json:"totalResults"`
	Results      []searchResult `json:"results"`
}

// searchResult is one combined movie/TV search result. Movies carry
// title/releaseDate, series carry name/firstAirDate.
type searchResult struct {
	ID           int        `json:"id"`
	MediaType    string     `json:"mediaType"`
	Title        string     `json:"title"`
	Name         string     `json:"name"`
	ReleaseDate  string     `json:"releaseDate"`
	FirstAirDate string     `json:"firstAirDate"`
	Overview     string     `json:"overview"`
	PosterPath   string     `json:"posterPath"`
	MediaInfo    *mediaInfo `json:"mediaInfo"`
}

// mediaInfo is Overseerr's request/availability record for a result.
type mediaInfo struct {
	Status   int          `json:"status"`
	Status4k int          `json:"status4k"`
	Seasons  []seasonInfo `json:"seasons"`
}

type seasonInfo struct {
	SeasonNumber int `json:"seasonNumber"`
	Status       int `json:"status"`
}

// tvDetails is the subset of the Overseerr /tv/{id} response we need:
// the full season inventory plus per-season request status.
type tvDetails struct {
	ID      int `json:"id"`
	Seasons []struct {
		SeasonNumber int `json:"seasonNumber"`
		EpisodeCount int `json:"episodeCount"`
	} `json:"seasons"`
	MediaInfo *mediaInfo `json:"mediaInfo"`
}

// requestPayload is the POST /request body.
type requestPayload struct {
	MediaID   int    `json:"mediaId"`
	MediaType string `json:"mediaType"`
	Seasons   []int  `json:"seasons,omitempty"`
}

// errorResponse is Overseerr's error body.
type errorResponse struct {
	Message string `json:"message"`
}
