package team

import (
	"errors"
	"slices"
	"strings"
	"time"
)

// Limits
const (
	MaxNameLength    = 80
	DescPreviewChars = 60
)

// Team sizes
const (
	Size1v1 = "1v1"
	Size3v3 = "3v3"
	Size5v5 = "5v5"
)

// NoDescription is shown for teams without a description.
const NoDescription = "No description."

// ValidSizes lists accepted team sizes.
var ValidSizes = []string{Size1v1, Size3v3, Size5v5}

// Domain errors
var (
	ErrEmptyName     = errors.New("team name is required")
	ErrNameTooLong   = errors.New("team name cannot exceed 80 characters")
	ErrInvalidSize   = errors.New("team size must be one of: 1v1, 3v3, 5v5")
	ErrTeamNotFound  = errors.New("team not found")
	ErrTeamNameTaken = errors.New("team name already taken")
	ErrAlreadyMember = errors.New("already a member of this team")
)

// Team is a group of players led by its creator.
type Team struct {
	ID          string
	Name        string
	Size        string
	Description string
	Tags        []string
	CoachID     string
	CreatedAt   time.Time
}

// Membership links a user to a team.
type Membership struct {
	TeamID   string
	UserID   string
	JoinedAt time.Time
}

// Validate checks if the Team has valid data.
// PRE: Team struct is populated
// POST: Returns nil if valid, error otherwise
func (t *Team) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if len(t.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if !IsValidSize(t.Size) {
		return ErrInvalidSize
	}
	return nil
}

// ShortDescription returns the first 60 characters of the description
// followed by "...", or NoDescription when empty.
func (t *Team) ShortDescription() string {
	desc := strings.TrimSpace(t.Description)
	if desc == "" {
		return NoDescription
	}
	runes := []rune(desc)
	if len(runes) <= DescPreviewChars {
		return desc
	}
	return string(runes[:DescPreviewChars]) + "..."
}

// IsValidSize reports whether size is one of ValidSizes.
func IsValidSize(size string) bool {
	return slices.Contains(ValidSizes, size)
}

// ParseTags splits a comma separated tag list, dropping blanks.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
