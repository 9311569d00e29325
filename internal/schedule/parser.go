package schedule

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mrlokans/berthplan/internal/entities"
	"github.com/mrlokans/berthplan/internal/quay"
)

const (
	// DefaultMinSternBit is the first bit of the managed quay range. Vessels
	// whose stern lies before it are moored elsewhere.
	DefaultMinSternBit = 33

	// LongStayDays is the stay length above which the pipeline warns. Such
	// stays usually come from a mistyped period but are still expanded.
	LongStayDays = 62

	hashSeparator  = "\x1f"
	hashTimeLayout = "2006-01-02T15:04:05"
)

// Field patterns of a bulletin entry, e.g.
//
//	3 ◆ OCEAN PIONEER
//	LOA: 199.9m
//	ビット: 40-46
//	船尾: 40+05
//	代理店: 上組
//	03/01 08:00 ~ 03/02 17:00
var (
	loaPattern      = regexp.MustCompile(`(?i)LOA\s*[:：]?\s*(\d+(?:\.\d+)?)`)
	bitRangePattern = regexp.MustCompile(`ビット\s*[:：]?\s*(\d+)\s*[-~〜～]\s*(\d+)`)
	sternPattern    = regexp.MustCompile(`船尾\s*[:：]?\s*(\d+)(?:\s*([+-])\s*(\d+))?`)
	agentPattern    = regexp.MustCompile(`代理店\s*[:：]?\s*(\S[^\n]*)`)
	periodPattern   = regexp.MustCompile(`(\d{1,2})/(\d{1,2})\s+(\d{1,2}):(\d{2})\s*[~〜～]\s*(\d{1,2})/(\d{1,2})\s+(\d{1,2}):(\d{2})`)
)

// Status tags the outcome of parsing one block.
type Status string

const (
	StatusParsed  Status = "parsed"
	StatusSkipped Status = "skipped"
	StatusErrored Status = "errored"
)

// BlockOutcome is the result of parsing one block. Skipped and errored blocks
// carry a reason and no records.
type BlockOutcome struct {
	Index    int                       `json:"index"`
	ShipName string                    `json:"ship_name,omitempty"`
	Status   Status                    `json:"status"`
	Reason   string                    `json:"reason,omitempty"`
	Records  []entities.ScheduleRecord `json:"-"`
}

// StampedTime is a month/day/hour/minute read from a bulletin, without a year.
type StampedTime struct {
	Month, Day, Hour, Minute int
}

// Fields holds the values extracted from one block before any derivation.
type Fields struct {
	ShipName    string
	LOA         float64
	FirstBit    int
	SecondBit   int
	SternBit    int
	SternOffset int // signed meters
	Agent       string
	Arrival     StampedTime
	Departure   StampedTime
}

// errMissingField marks a block lacking a required field.
type errMissingField string

func (e errMissingField) Error() string {
	return "missing " + string(e)
}

// Options configures a Parser. Zero values fall back to defaults; a nil
// Location means UTC.
type Options struct {
	MinSternBit int
	Marker      string
	Location    *time.Location
	AgentCodes  map[string]string
}

// Parser turns bulletin blocks into schedule records.
type Parser struct {
	minSternBit int
	marker      string
	location    *time.Location
	agents      *AgentTable
}

func NewParser(opts Options) *Parser {
	p := &Parser{
		minSternBit: opts.MinSternBit,
		marker:      opts.Marker,
		location:    opts.Location,
	}
	if p.minSternBit == 0 {
		p.minSternBit = DefaultMinSternBit
	}
	if p.marker == "" {
		p.marker = DefaultMarker
	}
	if p.location == nil {
		p.location = time.UTC
	}
	codes := opts.AgentCodes
	if codes == nil {
		codes = DefaultAgentCodes
	}
	p.agents = NewAgentTable(codes)
	return p
}

// ParseBlock parses one block into one record per calendar day of the stay.
func (p *Parser) ParseBlock(block string, year int, importID string) BlockOutcome {
	fields, err := p.ExtractFields(block)
	if err != nil {
		return BlockOutcome{ShipName: firstLineName(block, p.marker), Status: StatusSkipped, Reason: err.Error()}
	}

	outcome := BlockOutcome{ShipName: fields.ShipName}
	records, skip, err := p.derive(fields, year, importID)
	switch {
	case err != nil:
		outcome.Status = StatusErrored
		outcome.Reason = err.Error()
	case skip != "":
		outcome.Status = StatusSkipped
		outcome.Reason = skip
	default:
		outcome.Status = StatusParsed
		outcome.Records = records
	}
	return outcome
}

// ExtractFields pattern-matches the required and optional fields of a block.
func (p *Parser) ExtractFields(block string) (*Fields, error) {
	f := &Fields{ShipName: firstLineName(block, p.marker)}
	if f.ShipName == "" {
		return nil, errMissingField("ship name")
	}

	m := loaPattern.FindStringSubmatch(block)
	if m == nil {
		return nil, errMissingField("LOA")
	}
	f.LOA, _ = strconv.ParseFloat(m[1], 64)

	m = bitRangePattern.FindStringSubmatch(block)
	if m == nil {
		return nil, errMissingField("mooring bit range")
	}
	f.FirstBit, _ = strconv.Atoi(m[1])
	f.SecondBit, _ = strconv.Atoi(m[2])

	m = sternPattern.FindStringSubmatch(block)
	if m == nil {
		return nil, errMissingField("stern bit")
	}
	f.SternBit, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		f.SternOffset, _ = strconv.Atoi(m[3])
		if m[2] == "-" {
			f.SternOffset = -f.SternOffset
		}
	}

	m = periodPattern.FindStringSubmatch(block)
	if m == nil {
		return nil, errMissingField("arrival/departure period")
	}
	n := make([]int, 8)
	for i := range n {
		n[i], _ = strconv.Atoi(m[i+1])
	}
	f.Arrival = StampedTime{Month: n[0], Day: n[1], Hour: n[2], Minute: n[3]}
	f.Departure = StampedTime{Month: n[4], Day: n[5], Hour: n[6], Minute: n[7]}

	if m = agentPattern.FindStringSubmatch(block); m != nil {
		f.Agent = strings.TrimSpace(m[1])
	}

	return f, nil
}

// derive applies the positional and calendar rules to extracted fields. A
// non-empty skip reason means the vessel lies outside the managed quay.
func (p *Parser) derive(f *Fields, year int, importID string) ([]entities.ScheduleRecord, string, error) {
	if math.IsNaN(f.LOA) || math.IsInf(f.LOA, 0) || f.LOA <= 0 {
		return nil, "", fmt.Errorf("invalid LOA %v", f.LOA)
	}

	side := entities.ArrivalSideStarboard
	if f.FirstBit < f.SecondBit {
		side = entities.ArrivalSidePort
	}

	base, ok := quay.BasePosition(f.SternBit)
	if !ok {
		return nil, "", fmt.Errorf("unknown stern bit %d", f.SternBit)
	}
	sternM := base + float64(f.SternOffset)
	bowM := sternM + f.LOA
	if side == entities.ArrivalSidePort {
		bowM = sternM - f.LOA
	}

	if bit := int(math.Trunc(quay.MetersToBitPosition(sternM))); bit < p.minSternBit {
		return nil, fmt.Sprintf("stern position %s below managed range (min %d)", quay.MetersToBitNotation(sternM), p.minSternBit), nil
	}

	arrival, err := p.stampToTime(year, f.Arrival)
	if err != nil {
		return nil, "", fmt.Errorf("arrival: %w", err)
	}
	departure, err := p.stampToTime(year, f.Departure)
	if err != nil {
		return nil, "", fmt.Errorf("departure: %w", err)
	}
	if departure.Before(arrival) {
		departure, err = p.stampToTime(year+1, f.Departure)
		if err != nil {
			return nil, "", fmt.Errorf("departure: %w", err)
		}
	}

	days := calendarDays(arrival, departure)

	rec := entities.ScheduleRecord{
		ShipName:       f.ShipName,
		BerthNumber:    quay.ClassifyBerth(bowM, sternM),
		ArrivalTime:    arrival,
		DepartureTime:  departure,
		ArrivalSide:    side,
		BowPositionM:   int(math.Round(bowM)),
		SternPositionM: int(math.Round(sternM)),
		PlannerCompany: p.agents.Resolve(f.Agent),
		LastImportID:   importID,
	}
	rec.DataHash = DataHash(rec)

	records := make([]entities.ScheduleRecord, 0, len(days))
	for _, day := range days {
		r := rec
		r.ScheduleDate = day.Format(entities.DateLayout)
		records = append(records, r)
	}
	return records, "", nil
}

var errInvalidTime = errors.New("invalid date/time")

// stampToTime builds an instant in the parser's location, rejecting values
// time.Date would silently normalise (02/30, 25:00).
func (p *Parser) stampToTime(year int, s StampedTime) (time.Time, error) {
	if s.Month < 1 || s.Month > 12 || s.Day < 1 || s.Hour > 23 || s.Minute > 59 {
		return time.Time{}, fmt.Errorf("%w %02d/%02d %02d:%02d", errInvalidTime, s.Month, s.Day, s.Hour, s.Minute)
	}
	t := time.Date(year, time.Month(s.Month), s.Day, s.Hour, s.Minute, 0, 0, p.location)
	if t.Day() != s.Day {
		return time.Time{}, fmt.Errorf("%w %02d/%02d in %d", errInvalidTime, s.Month, s.Day, year)
	}
	return t, nil
}

// calendarDays lists the midnights of every day from from's date through to's
// date inclusive.
func calendarDays(from, to time.Time) []time.Time {
	loc := from.Location()
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	last := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, loc)

	var days []time.Time
	for !day.After(last) {
		days = append(days, day)
		day = day.AddDate(0, 0, 1)
	}
	return days
}

// DataHash fingerprints the identifying fields of a record. It ignores
// ScheduleDate and the import id, so every row of one stay shares it.
func DataHash(r entities.ScheduleRecord) string {
	parts := []string{
		r.ShipName,
		strconv.Itoa(r.BerthNumber),
		r.ArrivalTime.Format(hashTimeLayout),
		r.DepartureTime.Format(hashTimeLayout),
		r.ArrivalSide,
		strconv.Itoa(r.BowPositionM),
		strconv.Itoa(r.SternPositionM),
		r.PlannerCompany,
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, hashSeparator)))
	return hex.EncodeToString(sum[:])
}

// firstLineName returns the first non-blank line with any list number and
// the vessel marker removed.
func firstLineName(block, marker string) string {
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = listNumberPattern.ReplaceAllString(line, "")
		line = strings.TrimPrefix(line, marker)
		return strings.TrimSpace(line)
	}
	return ""
}
