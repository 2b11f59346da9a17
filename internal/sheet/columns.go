// Package sheet maps card records to rows of the tabular store and back.
//
// A row is a fixed-width list of plain strings, one per Column. Styled text
// columns are stored in the textcodec markup form.
package sheet

// Column is a position in a card row.
type Column int

const (
	ColNumber Column = iota
	ColVersion
	ColFaction
	ColName
	ColType
	ColUnique
	ColCost
	ColStrength
	ColIcons
	ColTraits
	ColText
	ColFlavor
	ColDeckLimit
	ColIncome
	ColInitiative
	ColClaim
	ColReserve
	ColDesigner
	ColIllustrator
	ColNoteType
	ColNoteText
	ColPlaytestVersion
	ColGithubIssue
	ColPackShort
	ColReleaseNumber

	// ColumnCount is the width of a card row.
	ColumnCount int = iota
)

var columnNames = [...]string{
	ColNumber:          "Number",
	ColVersion:         "Version",
	ColFaction:         "Faction",
	ColName:            "Name",
	ColType:            "Type",
	ColUnique:          "Unique",
	ColCost:            "Cost",
	ColStrength:        "Strength",
	ColIcons:           "Icons",
	ColTraits:          "Traits",
	ColText:            "Text",
	ColFlavor:          "Flavor",
	ColDeckLimit:       "Deck Limit",
	ColIncome:          "Income",
	ColInitiative:      "Initiative",
	ColClaim:           "Claim",
	ColReserve:         "Reserve",
	ColDesigner:        "Designer",
	ColIllustrator:     "Illustrator",
	ColNoteType:        "Note Type",
	ColNoteText:        "Note Text",
	ColPlaytestVersion: "Playtesting Version",
	ColGithubIssue:     "GitHub Issue",
	ColPackShort:       "Pack",
	ColReleaseNumber:   "Release Number",
}

func (c Column) String() string {
	if c < 0 || int(c) >= len(columnNames) {
		return "Unknown"
	}
	return columnNames[c]
}

// Header returns the column names in row order.
func Header() []string {
	h := make([]string, ColumnCount)
	for i := range h {
		h[i] = Column(i).String()
	}
	return h
}

// dash is written for unset development-state columns.
const dash = "-"
