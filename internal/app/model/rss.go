package model

import (
	"bytes"
	"encoding/xml"
)

const (
	NamespaceAtom   = "http://www.w3.org/2005/Atom"
	NamespaceItunes = "http://www.itunes.com/dtds/podcast-1.0.dtd"

	xmlDeclaration = `<?xml version="1.0" encoding="utf-8" standalone="yes"?>` + "\n"
)

// Rss is the podcast feed document. Prefixed element names are
// written verbatim, the prefixes are declared on the root element.
type Rss struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Atom    string   `xml:"xmlns:atom,attr"`
	Itunes  string   `xml:"xmlns:itunes,attr"`
	Channel Channel  `xml:"channel"`
}

type Channel struct {
	AtomLink      AtomLink         `xml:"atom:link"`
	Title         string           `xml:"title"`
	Link          string           `xml:"link"`
	Description   string           `xml:"description"`
	Language      string           `xml:"language"`
	Copyright     string           `xml:"copyright"`
	LastBuildDate string           `xml:"lastBuildDate,omitempty"`
	Explicit      ItunesExplicit   `xml:"itunes:explicit"`
	Author        string           `xml:"itunes:author"`
	Block         string           `xml:"itunes:block"`
	Owner         ItunesOwner      `xml:"itunes:owner"`
	NewFeedURL    string           `xml:"itunes:new-feed-url,omitempty"`
	Type          string           `xml:"itunes:type"`
	Image         *ItunesImage     `xml:"itunes:image"`
	Subtitle      string           `xml:"itunes:subtitle,omitempty"`
	Summary       string           `xml:"itunes:summary,omitempty"`
	Categories    []ItunesCategory `xml:"itunes:category"`
	Season        int              `xml:"itunes:season,omitempty"`
	Items         []Item           `xml:"item"`
}

type AtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type ItunesOwner struct {
	Email string `xml:"itunes:email"`
	Name  string `xml:"itunes:name"`
}

type ItunesImage struct {
	Href string `xml:"href,attr"`
}

type ItunesCategory struct {
	Text string `xml:"text,attr"`
}

type Item struct {
	GUID        *GUID            `xml:"guid"`
	Title       string           `xml:"title"`
	Description string           `xml:"description"`
	PubDate     string           `xml:"pubDate"`
	Explicit    ItunesExplicit   `xml:"itunes:explicit"`
	Author      string           `xml:"itunes:author"`
	Duration    ItunesDuration   `xml:"itunes:duration"`
	Image       *ItunesImage     `xml:"itunes:image"`
	Episode     *int             `xml:"itunes:episode"`
	Season      *int             `xml:"itunes:season"`
	Link        string           `xml:"link,omitempty"`
	Enclosure   *Enclosure       `xml:"enclosure"`
	Categories  []ItunesCategory `xml:"itunes:category"`
}

type GUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type Enclosure struct {
	URL    string `xml:"url,attr"`
	Type   string `xml:"type,attr"`
	Length *int64 `xml:"length,attr,omitempty"`
}

// Marshal renders the document with an XML declaration and two space
// indentation.
func (r *Rss) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xmlDeclaration)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// FeedInfo is the subset of an already written feed needed to decide
// whether it is stale.
type FeedInfo struct {
	LastBuildDate string     `xml:"channel>lastBuildDate"`
	Items         []struct{} `xml:"channel>item"`
}
