package web

// BoardGame is one row on the open games board.
type BoardGame struct {
	ID         string
	Location   string
	Date       string
	StartTime  string
	EndTime    string
	SkillLevel string
	HostName   string
	OpenSlots  int
	MaxPlayers int
	Notes      string
}

type PaginationData struct {
	BasePath   string
	Page       int
	PerPage    int
	Total      int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	PrevPage   int
	NextPage   int
}

type BoardData struct {
	Games      []BoardGame
	Timezone   string
	Pagination PaginationData
}
