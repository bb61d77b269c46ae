package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrontMatter(t *testing.T) {
	raw := []byte(`---
title: Opening Night
slug: songs/003.opening-night
publish_date: 2024-03-05
category: Live
tags:
  - rock
  - 90s
draft: true
metadata:
  spotify: https://example.com/track
---

Body **here**.`)

	fm, body, err := ParseFrontMatter(raw)
	require.NoError(t, err)
	assert.Equal(t, "Opening Night", fm.Title)
	assert.Equal(t, "songs/003.opening-night", fm.Slug)
	assert.Equal(t, "2024-03-05", fm.PublishDate)
	assert.Equal(t, "Live", fm.Category)
	assert.Equal(t, []string{"rock", "90s"}, fm.Tags)
	assert.True(t, fm.Draft)
	assert.Equal(t, "https://example.com/track", fm.Metadata["spotify"])
	assert.Equal(t, "Body **here**.", string(body))
}

func TestParseFrontMatterMissing(t *testing.T) {
	_, body, err := ParseFrontMatter([]byte("just a body"))
	assert.ErrorIs(t, err, errNoFrontMatter)
	assert.Equal(t, "just a body", string(body))

	_, _, err = ParseFrontMatter(nil)
	assert.ErrorIs(t, err, errNoFrontMatter)
}

func TestParseFrontMatterNoBody(t *testing.T) {
	fm, body, err := ParseFrontMatter([]byte("---\ntitle: x\n---"))
	require.NoError(t, err)
	assert.Equal(t, "x", fm.Title)
	assert.Empty(t, body)

	// 空 frontmatter，无正文
	fm, body, err = ParseFrontMatter([]byte("---\n---"))
	require.NoError(t, err)
	assert.Equal(t, FrontMatter{}, fm)
	assert.Empty(t, body)
}

func TestParseFrontMatterCRLF(t *testing.T) {
	fm, body, err := ParseFrontMatter([]byte("---\r\ntitle: x\r\n---\r\nbody"))
	require.NoError(t, err)
	assert.Equal(t, "x", fm.Title)
	assert.Equal(t, "body", string(body))
}

func TestParseTime(t *testing.T) {
	got := ParseTime("2024-03-05")
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local), got)

	got = ParseTime("2024-03-05 13:30")
	assert.Equal(t, 13, got.Hour())

	assert.True(t, ParseTime("").IsZero())
	assert.True(t, ParseTime("not a date").IsZero())
}
