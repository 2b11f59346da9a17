package domain

// IsPreRelease reports a card that has never been playtested: its version is
// at most 1.0.0 and no playtesting version is recorded.
func (c *Card) IsPreRelease() bool {
	return c.Version.Compare(FirstRelease) <= 0 && c.PlaytestingVersion == nil
}

// IsPlaytesting reports a card whose version is the one live in playtesting.
func (c *Card) IsPlaytesting() bool {
	return c.PlaytestingVersion != nil && c.Version == *c.PlaytestingVersion
}

// IsChanged reports a card with a pending change note.
func (c *Card) IsChanged() bool {
	return c.Note != nil && c.Note.Type != NoteImplemented
}

// IsImplemented reports a card whose current version is available to
// playtesters. A known issue decides; without one, being in playtesting does.
func (c *Card) IsImplemented() bool {
	if c.GithubStatus != nil {
		return c.GithubStatus.Status == IssueClosed
	}
	return c.IsPlaytesting()
}

// IsNewlyImplemented reports a card whose issue has been closed, whatever its
// note says.
func (c *Card) IsNewlyImplemented() bool {
	return c.GithubStatus != nil && c.GithubStatus.Status == IssueClosed
}

// RequiresIssue reports a card that needs an issue opened for it.
func (c *Card) RequiresIssue() bool {
	return c.GithubStatus == nil && (c.IsPreRelease() || c.IsChanged())
}

// IsReleasable reports a card assigned to a pack.
func (c *Card) IsReleasable() bool {
	return c.Release != nil && c.Release.PackShort != "" && c.Release.ReleaseNumber > 0
}
