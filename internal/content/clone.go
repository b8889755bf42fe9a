package content

import (
	"maps"
	"slices"
)

// Clone returns a deep copy of the member.
func (m *Member) Clone() *Member {
	c := *m
	c.Links = slices.Clone(m.Links)
	c.FeaturedWorks = slices.Clone(m.FeaturedWorks)
	return &c
}

// Clone returns a deep copy of the work.
func (w *Work) Clone() *Work {
	c := *w
	c.Collaborators = slices.Clone(w.Collaborators)
	c.ExtraCollaborators = slices.Clone(w.ExtraCollaborators)
	c.Streaming = slices.Clone(w.Streaming)
	return &c
}

// Clone returns a deep copy of the post.
func (p *Post) Clone() *Post {
	c := *p
	c.Collaborators = slices.Clone(p.Collaborators)
	c.SocialLinks = slices.Clone(p.SocialLinks)
	return &c
}

// Clone returns a deep copy of the album.
func (a *Album) Clone() *Album {
	c := *a
	c.Contributors = slices.Clone(a.Contributors)
	c.ExtraContributors = slices.Clone(a.ExtraContributors)
	c.OtherCovers = maps.Clone(a.OtherCovers)
	c.Tracklist = slices.Clone(a.Tracklist)
	c.SNSLinks = slices.Clone(a.SNSLinks)
	return &c
}
