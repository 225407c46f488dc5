// Package e2e provides end-to-end tests that build an index from a small Alice in Wonderland
// corpus and drive the HTTP API against it.
package e2e

import (
	"strings"
)

// Chapter is one section of the fixture corpus.
type Chapter struct {
	Title string
	Text  string
}

// QueryTestCase defines a query and a word that must appear in at least one returned passage.
type QueryTestCase struct {
	Query       string
	Expected    string
	Description string
}

// Corpus holds the fixture chapters and the queries run against them.
type Corpus struct {
	Chapters  []Chapter
	TestCases []QueryTestCase
}

const (
	gutenbergHeader = `The Project Gutenberg eBook of Alice's Adventures in Wonderland

This eBook is for the use of anyone anywhere in the United States and most other parts of
the world at no cost and with almost no restrictions whatsoever.

*** START OF THE PROJECT GUTENBERG EBOOK ALICE'S ADVENTURES IN WONDERLAND ***`

	gutenbergFooter = `*** END OF THE PROJECT GUTENBERG EBOOK ALICE'S ADVENTURES IN WONDERLAND ***

Updated editions will replace the previous one. Creating the works from print editions not
protected by U.S. copyright law means that no one owns a United States copyright in these works.`

	// LicenseMarker appears only in the Gutenberg footer and must never be indexed.
	LicenseMarker = "copyright"
)

// BuildCorpus returns the fixture corpus.
func BuildCorpus() *Corpus {
	return &Corpus{
		Chapters: []Chapter{
			{
				Title: "CHAPTER I. Down the Rabbit-Hole",
				Text: `Alice was beginning to get very tired of sitting by her sister on the bank. Suddenly a
White Rabbit with pink eyes ran close by her. The White Rabbit took a watch out of its
waistcoat-pocket, looked at it, and hurried on, and Alice ran across the field after the
Rabbit and saw it pop down a large rabbit-hole under the hedge.`,
			},
			{
				Title: "CHAPTER I (continued)",
				Text: `There was a little glass table with a tiny golden key on it. Behind a low curtain was a
little door about fifteen inches high. A little bottle stood on the table, and round the neck
of the bottle was a paper label with the words DRINK ME beautifully printed on it in large
letters.`,
			},
			{
				Title: "CHAPTER V. Advice from a Caterpillar",
				Text: `She stretched herself up on tiptoe and peeped over the edge of the mushroom, and her eyes
immediately met those of a large blue Caterpillar that was sitting on the top with its arms
folded, quietly smoking a long hookah. The Caterpillar and Alice looked at each other for
some time in silence.`,
			},
			{
				Title: "CHAPTER VI. Pig and Pepper",
				Text: `The Cheshire Cat only grinned when it saw Alice. It looked good-natured, she thought, still
it had very long claws and a great many teeth. The Cheshire Cat vanished quite slowly,
beginning with the end of the tail, and ending with the grin, which remained some time after
the rest of it had gone.`,
			},
			{
				Title: "CHAPTER VII. A Mad Tea-Party",
				Text: `A table was set out under a tree in front of the house, and the March Hare and the Hatter
were having tea at it. A Dormouse was sitting between them, fast asleep. Why is a raven like
a writing-desk? asked the Hatter. Have you guessed the riddle yet? the Hatter said, turning
to Alice again.`,
			},
			{
				Title: "CHAPTER VIII. The Queen's Croquet-Ground",
				Text: `The Queen of Hearts turned crimson with fury and screamed Off with her head! Off with her
head! The croquet balls were live hedgehogs, and the mallets live flamingoes, and the
soldiers had to double themselves up and to stand on their hands and feet to make the
arches. The Queen had only one way of settling all difficulties.`,
			},
			{
				Title: "CHAPTER IX. The Mock Turtle's Story",
				Text: `The Gryphon led Alice to the Mock Turtle, who sat sighing on a little ledge of rock. The
Mock Turtle told of the school in the sea, where the master was an old Turtle they called
Tortoise because he taught us, and of lessons in Reeling and Writhing.`,
			},
		},
		TestCases: []QueryTestCase{
			{"Who is the White Rabbit?", "Rabbit", "rabbit with a watch"},
			{"Why is a raven like a writing-desk?", "raven", "the Hatter's riddle"},
			{"Cheshire Cat grin", "Cheshire", "the vanishing cat"},
			{"Queen of Hearts croquet flamingoes", "Queen", "croquet with the Queen"},
			{"Caterpillar smoking a hookah on a mushroom", "Caterpillar", "advice from a caterpillar"},
			{"bottle labelled DRINK ME", "DRINK", "the little bottle"},
			{"Mock Turtle and the Gryphon", "Turtle", "the Mock Turtle's story"},
		},
	}
}

// Text returns the corpus as a Project Gutenberg style plain text file.
func (c *Corpus) Text() string {
	var b strings.Builder
	b.WriteString(gutenbergHeader)
	b.WriteString("\n\n")
	b.WriteString(c.Body())
	b.WriteString("\n\n")
	b.WriteString(gutenbergFooter)
	b.WriteString("\n")
	return b.String()
}

// Body returns the chapter text without the Gutenberg header and footer.
func (c *Corpus) Body() string {
	parts := make([]string, 0, len(c.Chapters))
	for _, ch := range c.Chapters {
		parts = append(parts, ch.Title+"\n\n"+ch.Text)
	}
	return strings.Join(parts, "\n\n")
}

// containsFold reports whether s contains substr, ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
