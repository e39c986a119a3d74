package schema

// Required keys per document type. A row missing one of these means the
// site changed its layout.
var (
	ScheduleKeys       = []string{"date_game", "visitor_team_name", "home_team_name"}
	RosterKeys         = []string{"player", "pos"}
	PerGameKeys        = []string{"player", "g", "pts_per_g"}
	BoxscoreKeys       = []string{"player"}
	BoxscorePlayedKeys = []string{"mp", "pts"}
	InjuryKeys         = []string{"player", "date_update", "note"}
)

// KeyAliases lists, per canonical key, the other data-stat identifiers the
// site has used for the same column. Lookups try the canonical key first.
var KeyAliases = map[string][]string{
	"player":            {"name_display"},
	"g":                 {"games"},
	"gs":                {"games_started"},
	"mp_per_g":          {"mp"},
	"pts_per_g":         {"pts"},
	"trb_per_g":         {"trb"},
	"ast_per_g":         {"ast"},
	"stl_per_g":         {"stl"},
	"blk_per_g":         {"blk"},
	"tov_per_g":         {"tov"},
	"birth_country":     {"flag"},
	"years_experience":  {"exp"},
	"date_game":         {"date"},
	"game_start_time":   {"start_time"},
	"visitor_team_name": {"visitor_team"},
	"home_team_name":    {"home_team"},
	"box_score_text":    {"box_score"},
	"game_remarks":      {"remarks", "notes"},
	"date_update":       {"date"},
	"note":              {"injury_note", "description"},
	"plus_minus":        {"+/-"},
}
