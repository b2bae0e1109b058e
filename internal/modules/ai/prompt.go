package ai

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultStyle is used when a request does not specify a writing style.
	DefaultStyle = "neutral"
	// DefaultChapterCount is used when an outline request omits the count.
	DefaultChapterCount = 5
)

// ErrInvalidInput marks a request that fails field validation.
var ErrInvalidInput = errors.New("invalid input")

const outlinePromptTemplate = `You are an expert book outline generator. Create a comprehensive book outline based on the following requirements:

Topic: %q
%sWriting Style: %s
Number of Chapters: %d

Requirements:
1. Generate exactly %d chapters
2. Each chapter title should be clear, engaging, and follow a logical progression
3. Each chapter description should be 2-3 sentences explaining what the chapter covers
4. Ensure chapters build upon each other coherently
5. Match the %q writing style in your titles and descriptions

Output Format:
Return ONLY a valid JSON array with no additional text, markdown, or formatting. Each object must have exactly two keys: "title" and "description".`

const chapterPromptTemplate = `You are an expert writer specializing in %s content. Write a complete chapter for a book using the following specifications:

Chapter Title: %q
%sWriting Style: %s
Target Length: Comprehensive and detailed (aim for 1500-2500 words)

Requirements:
1. Write flowing prose, not an outline
2. Stay on the chapter's subject as given by the title and description
3. Match the %q writing style throughout
4. Do not include the chapter title as a heading; begin directly with the content

Begin the content writing now`

// OutlineRequest asks the generator for a chapter outline. Immutable once
// built; construct through NewOutlineRequest.
type OutlineRequest struct {
	Topic        string
	Style        string
	ChapterCount int
	Description  string
}

// NewOutlineRequest validates and builds an outline generation request.
func NewOutlineRequest(topic, style string, chapterCount int, description string) (OutlineRequest, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return OutlineRequest{}, fmt.Errorf("%w: topic is required", ErrInvalidInput)
	}
	if chapterCount <= 0 {
		return OutlineRequest{}, fmt.Errorf("%w: chapter count must be positive", ErrInvalidInput)
	}
	if strings.TrimSpace(style) == "" {
		style = DefaultStyle
	}
	return OutlineRequest{
		Topic:        topic,
		Style:        style,
		ChapterCount: chapterCount,
		Description:  strings.TrimSpace(description),
	}, nil
}

// Prompt renders the deterministic prompt text for this request.
func (r OutlineRequest) Prompt() string {
	desc := ""
	if r.Description != "" {
		desc = fmt.Sprintf("Description: %s\n", r.Description)
	}
	return fmt.Sprintf(outlinePromptTemplate,
		r.Topic, desc, r.Style, r.ChapterCount, r.ChapterCount, r.Style)
}

// ChapterRequest asks the generator for the prose of a single chapter.
type ChapterRequest struct {
	Title       string
	Description string
	Style       string
}

// NewChapterRequest validates and builds a chapter content request.
func NewChapterRequest(title, description, style string) (ChapterRequest, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return ChapterRequest{}, fmt.Errorf("%w: chapter title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(style) == "" {
		style = DefaultStyle
	}
	return ChapterRequest{
		Title:       title,
		Description: strings.TrimSpace(description),
		Style:       style,
	}, nil
}

// Prompt renders the deterministic prompt text for this request.
func (r ChapterRequest) Prompt() string {
	desc := ""
	if r.Description != "" {
		desc = fmt.Sprintf("Chapter Description: %s\n", r.Description)
	}
	return fmt.Sprintf(chapterPromptTemplate,
		r.Style, r.Title, desc, r.Style, r.Style)
}
