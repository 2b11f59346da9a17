package sheet

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/h0rv/cardsync/internal/domain"
	"github.com/h0rv/cardsync/internal/textcodec"
)

var (
	// ErrMissingValue indicates an empty required column.
	ErrMissingValue = errors.New("missing value")
	// ErrInvalidValue indicates a column that could not be parsed.
	ErrInvalidValue = errors.New("invalid value")
)

// DeserializationError reports a row that could not become a card. Number is
// zero when the card number itself could not be read.
type DeserializationError struct {
	Number int
	Column Column
	Err    error
}

func (e *DeserializationError) Error() string {
	if e.Number == 0 {
		return fmt.Sprintf("row: column %s: %v", e.Column, e.Err)
	}
	return fmt.Sprintf("card %d: column %s: %v", e.Number, e.Column, e.Err)
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

// Serialize writes a card as a row. Mechanical columns are only written for
// the card types that have them.
func Serialize(card *domain.Card) []string {
	row := make([]string, ColumnCount)

	row[ColNumber] = strconv.Itoa(card.Number)
	row[ColVersion] = card.Version.String()
	row[ColFaction] = card.Faction
	row[ColName] = card.Name
	row[ColType] = string(card.Type())

	switch st := card.Stats.(type) {
	case domain.CharacterStats:
		writeUniqueness(row, st.Uniqueness)
		writeCost(row, st.Costed)
		row[ColStrength] = st.Strength.String()
		row[ColIcons] = formatIcons(st.Icons)
	case domain.LocationStats:
		writeUniqueness(row, st.Uniqueness)
		writeCost(row, st.Costed)
	case domain.AttachmentStats:
		writeUniqueness(row, st.Uniqueness)
		writeCost(row, st.Costed)
	case domain.EventStats:
		writeCost(row, st.Costed)
	case domain.PlotStats:
		row[ColIncome] = st.Income.String()
		row[ColInitiative] = st.Initiative.String()
		row[ColClaim] = st.Claim.String()
		row[ColReserve] = st.Reserve.String()
	case domain.AgendaStats:
	}

	row[ColTraits] = formatTraits(card.Traits)
	row[ColText] = textcodec.Encode(card.Text)
	if card.Flavor != nil {
		row[ColFlavor] = textcodec.Encode(card.Flavor)
	}
	if card.DeckLimit != 0 && card.DeckLimit != domain.DefaultDeckLimit(card.Type()) {
		row[ColDeckLimit] = strconv.Itoa(card.DeckLimit)
	}
	row[ColDesigner] = card.Designer
	row[ColIllustrator] = card.Illustrator

	row[ColNoteType] = dash
	if card.Note != nil {
		row[ColNoteType] = string(card.Note.Type)
		row[ColNoteText] = card.Note.Text
	}
	row[ColPlaytestVersion] = dash
	if card.PlaytestingVersion != nil {
		row[ColPlaytestVersion] = card.PlaytestingVersion.String()
	}
	if card.GithubStatus != nil {
		row[ColGithubIssue] = textcodec.Encode(textcodec.Text{{
			Text: string(card.GithubStatus.Status),
			Link: card.GithubStatus.URL,
		}})
	}
	if card.Release != nil {
		row[ColPackShort] = card.Release.PackShort
		if card.Release.ReleaseNumber != 0 {
			row[ColReleaseNumber] = strconv.Itoa(card.Release.ReleaseNumber)
		}
	}
	return row
}

func writeUniqueness(row []string, u domain.Uniqueness) {
	if u.Unique {
		row[ColUnique] = "Unique"
	}
}

func writeCost(row []string, c domain.Costed) {
	row[ColCost] = c.Cost.String()
}

// Free text columns are read verbatim; every other cell is trimmed.
var verbatimColumns = map[Column]bool{
	ColText:     true,
	ColFlavor:   true,
	ColNoteText: true,
}

// Deserialize reads a card from a row of the given project. Rows shorter than
// ColumnCount are padded with empty cells.
func Deserialize(projectID int, row []string) (*domain.Card, error) {
	cells := make([]string, ColumnCount)
	for i := 0; i < len(row) && i < ColumnCount; i++ {
		if verbatimColumns[Column(i)] {
			cells[i] = row[i]
			continue
		}
		cells[i] = strings.TrimSpace(row[i])
	}
	get := func(c Column) string { return cells[c] }

	card := &domain.Card{ProjectID: projectID}

	number := get(ColNumber)
	if number == "" {
		return nil, &DeserializationError{Column: ColNumber, Err: ErrMissingValue}
	}
	n, err := strconv.Atoi(number)
	if err != nil || n <= 0 {
		return nil, &DeserializationError{Column: ColNumber, Err: fmt.Errorf("%w: %q", ErrInvalidValue, number)}
	}
	card.Number = n

	fail := func(c Column, err error) (*domain.Card, error) {
		return nil, &DeserializationError{Number: n, Column: c, Err: err}
	}

	if get(ColVersion) == "" {
		return fail(ColVersion, ErrMissingValue)
	}
	if card.Version, err = domain.ParseVersion(get(ColVersion)); err != nil {
		return fail(ColVersion, err)
	}
	if card.Faction = get(ColFaction); card.Faction == "" {
		return fail(ColFaction, ErrMissingValue)
	}
	if card.Name = get(ColName); card.Name == "" {
		return fail(ColName, ErrMissingValue)
	}
	if get(ColType) == "" {
		return fail(ColType, ErrMissingValue)
	}
	cardType, err := domain.ParseCardType(get(ColType))
	if err != nil {
		return fail(ColType, err)
	}

	switch cardType {
	case domain.TypeCharacter:
		icons, err := parseIcons(get(ColIcons))
		if err != nil {
			return fail(ColIcons, err)
		}
		card.Stats = domain.CharacterStats{
			Uniqueness: readUniqueness(get(ColUnique)),
			Costed:     domain.Costed{Cost: domain.ParseValue(get(ColCost))},
			Strength:   domain.ParseValue(get(ColStrength)),
			Icons:      icons,
		}
	case domain.TypeLocation:
		card.Stats = domain.LocationStats{
			Uniqueness: readUniqueness(get(ColUnique)),
			Costed:     domain.Costed{Cost: domain.ParseValue(get(ColCost))},
		}
	case domain.TypeAttachment:
		card.Stats = domain.AttachmentStats{
			Uniqueness: readUniqueness(get(ColUnique)),
			Costed:     domain.Costed{Cost: domain.ParseValue(get(ColCost))},
		}
	case domain.TypeEvent:
		card.Stats = domain.EventStats{
			Costed: domain.Costed{Cost: domain.ParseValue(get(ColCost))},
		}
	case domain.TypePlot:
		card.Stats = domain.PlotStats{
			Income:     domain.ParseValue(get(ColIncome)),
			Initiative: domain.ParseValue(get(ColInitiative)),
			Claim:      domain.ParseValue(get(ColClaim)),
			Reserve:    domain.ParseValue(get(ColReserve)),
		}
	case domain.TypeAgenda:
		card.Stats = domain.AgendaStats{}
	}

	card.Traits = parseTraits(get(ColTraits))
	card.Text = textcodec.Decode(get(ColText))
	if flavor := get(ColFlavor); flavor != "" {
		card.Flavor = textcodec.Decode(flavor)
	}

	card.DeckLimit = domain.DefaultDeckLimit(cardType)
	if limit := get(ColDeckLimit); limit != "" {
		if card.DeckLimit, err = strconv.Atoi(limit); err != nil {
			return fail(ColDeckLimit, fmt.Errorf("%w: %q", ErrInvalidValue, limit))
		}
	}
	card.Designer = optional(get(ColDesigner))
	card.Illustrator = get(ColIllustrator)

	if noteType := optional(get(ColNoteType)); noteType != "" {
		t, ok := domain.ParseNoteType(noteType)
		if !ok {
			return fail(ColNoteType, fmt.Errorf("%w: %q", ErrInvalidValue, noteType))
		}
		card.Note = &domain.Note{Type: t, Text: get(ColNoteText)}
	}

	if pv := optional(get(ColPlaytestVersion)); pv != "" {
		v, err := domain.ParseVersion(pv)
		if err != nil {
			return fail(ColPlaytestVersion, err)
		}
		card.PlaytestingVersion = &v
	}

	if issue := optional(get(ColGithubIssue)); issue != "" {
		status, err := parseGithubStatus(issue)
		if err != nil {
			return fail(ColGithubIssue, err)
		}
		card.GithubStatus = status
	}

	pack, release := optional(get(ColPackShort)), optional(get(ColReleaseNumber))
	if pack != "" || release != "" {
		card.Release = &domain.Release{PackShort: pack}
		if release != "" {
			if card.Release.ReleaseNumber, err = strconv.Atoi(release); err != nil {
				return fail(ColReleaseNumber, fmt.Errorf("%w: %q", ErrInvalidValue, release))
			}
		}
	}

	return card, nil
}

// optional maps the dash sentinel to an empty value.
func optional(s string) string {
	if s == dash {
		return ""
	}
	return s
}

func readUniqueness(s string) domain.Uniqueness {
	switch strings.ToLower(s) {
	case "unique", "yes", "true", "x":
		return domain.Uniqueness{Unique: true}
	default:
		return domain.Uniqueness{}
	}
}

var iconNames = []string{"Military", "Intrigue", "Power"}

func formatIcons(icons domain.Icons) string {
	var parts []string
	for i, on := range []bool{icons.Military, icons.Intrigue, icons.Power} {
		if on {
			parts = append(parts, iconNames[i])
		}
	}
	return strings.Join(parts, ", ")
}

func parseIcons(s string) (domain.Icons, error) {
	var icons domain.Icons
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '/' }) {
		switch strings.ToLower(strings.Trim(part, ":[]")) {
		case "military":
			icons.Military = true
		case "intrigue":
			icons.Intrigue = true
		case "power":
			icons.Power = true
		default:
			return domain.Icons{}, fmt.Errorf("%w: icon %q", ErrInvalidValue, part)
		}
	}
	return icons, nil
}

// formatTraits writes traits the way they are printed: "Knight. Lord."
func formatTraits(traits []string) string {
	parts := make([]string, 0, len(traits))
	for _, t := range traits {
		parts = append(parts, t+".")
	}
	return strings.Join(parts, " ")
}

func parseTraits(s string) []string {
	var traits []string
	for _, part := range strings.Split(s, ".") {
		if t := strings.TrimSpace(part); t != "" {
			traits = append(traits, t)
		}
	}
	return traits
}

func parseGithubStatus(cell string) (*domain.GithubStatus, error) {
	text := textcodec.Decode(cell)
	status := &domain.GithubStatus{}
	for _, r := range text {
		if r.Link != "" {
			status.URL = r.Link
			break
		}
	}
	switch domain.IssueState(strings.ToLower(strings.TrimSpace(text.PlainString()))) {
	case domain.IssueOpen:
		status.Status = domain.IssueOpen
	case domain.IssueClosed:
		status.Status = domain.IssueClosed
	default:
		return nil, fmt.Errorf("%w: issue status %q", ErrInvalidValue, text.PlainString())
	}
	return status, nil
}
