// Package embed turns links in content into icons, thumbnails and embedded
// players.
package embed

import (
	"fmt"
	"net/url"
	"strings"
)

// LinkType identifies the platform a link points at.
type LinkType int

const (
	Other LinkType = iota
	Twitter
	X
	Bluesky
	YouTube
	Niconico
	SoundCloud
	GitHub
	Linktree
	Spotify
	TikTok
	Instagram
)

var linkTypeNames = map[LinkType]string{
	Other:      "other",
	Twitter:    "twitter",
	X:          "x",
	Bluesky:    "bluesky",
	YouTube:    "youtube",
	Niconico:   "niconico",
	SoundCloud: "soundcloud",
	GitHub:     "github",
	Linktree:   "linktree",
	Spotify:    "spotify",
	TikTok:     "tiktok",
	Instagram:  "instagram",
}

func (t LinkType) String() string {
	return linkTypeNames[t]
}

var domains = map[string]LinkType{
	"twitter.com":      Twitter,
	"x.com":            X,
	"bsky.app":         Bluesky,
	"youtube.com":      YouTube,
	"youtu.be":         YouTube,
	"nicovideo.jp":     Niconico,
	"nico.ms":          Niconico,
	"soundcloud.com":   SoundCloud,
	"github.com":       GitHub,
	"linktree.com":     Linktree,
	"linktr.ee":        Linktree,
	"spotify.com":      Spotify,
	"open.spotify.com": Spotify,
	"tiktok.com":       TikTok,
	"instagram.com":    Instagram,
}

// Classify parses link and maps its host onto a platform. Unknown hosts are
// Other; only links that are not absolute URLs are an error.
func Classify(link string) (LinkType, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return Other, fmt.Errorf("invalid link %q: %w", link, err)
	}
	if u.Host == "" {
		return Other, fmt.Errorf("link %q has no host", link)
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")
	host = strings.TrimPrefix(host, "sp.")

	if t, ok := domains[host]; ok {
		return t, nil
	}
	return Other, nil
}

// Icon is the file name of the platform's icon under assets/social_icons.
func (t LinkType) Icon() string {
	switch t {
	case Twitter, X:
		return "twitter.svg"
	case Other:
		return "link.svg"
	default:
		return t.String() + ".svg"
	}
}

// IconPath is the asset reference of the icon for link. Unparseable links
// get the generic link icon.
func IconPath(link string) string {
	t, _ := Classify(link)
	return "assets/social_icons/" + t.Icon()
}

// YouTubeID extracts the video id from watch, short and youtu.be links.
func YouTubeID(u *url.URL) (string, bool) {
	if strings.EqualFold(u.Hostname(), "youtu.be") {
		id := strings.Trim(u.Path, "/")
		return id, id != ""
	}
	if v := u.Query().Get("v"); v != "" {
		return v, true
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) == 2 && (segments[0] == "shorts" || segments[0] == "embed") && segments[1] != "" {
		return segments[1], true
	}
	return "", false
}

// NiconicoID finds the "sm..." video id in the link's path.
func NiconicoID(u *url.URL) (string, bool) {
	for _, seg := range strings.Split(u.Path, "/") {
		if strings.HasPrefix(seg, "sm") && len(seg) > 2 {
			return seg, true
		}
	}
	return "", false
}

// PlaceholderThumbnail is shown for links without a fetchable thumbnail.
const PlaceholderThumbnail = "images/gray.jpg"

// Thumbnail returns a preview image for link: the YouTube thumbnail for
// YouTube videos, otherwise the gray placeholder asset.
func Thumbnail(link string) string {
	t, err := Classify(link)
	if err != nil || t != YouTube {
		return PlaceholderThumbnail
	}
	u, _ := url.Parse(strings.TrimSpace(link))
	id, ok := YouTubeID(u)
	if !ok {
		return PlaceholderThumbnail
	}
	return "https://img.youtube.com/vi/" + url.PathEscape(id) + "/maxresdefault.jpg"
}
