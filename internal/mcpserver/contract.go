package mcpserver

// NoteFormatURI identifies the note format resource.
const NoteFormatURI = "memo://note-format"

// NoteFormatContract describes the Markdown form notes are read and exported
// in, and how plain text passed to add_note is stored.
const NoteFormatContract = `# Memo Note Format

A memo has a title, a plain-text body, a favorite flag and two timestamps.
read_note and the export command return it as Markdown with a YAML header:

` + "```" + `markdown
---
id: 01J8ZQ4W6M0X4Y9D5E3B2A1C0F     # assigned by the store, never supplied
title: 買い物リスト
favorite: true                     # omitted when false
created: 2025-01-20T09:00:00Z
updated: 2025-01-21T18:30:00Z
---
牛乳
卵
` + "```" + `

## Rules

1. **Title and content are trimmed.** Leading and trailing whitespace is dropped.
2. **A blank memo is not stored.** If both title and content are empty after
   trimming, add_note does nothing.
3. **A missing title becomes ` + "`" + `無題のメモ` + "`" + `.**
4. **New memos come first** in storage order. Listings sort favorites first, then
   by ` + "`" + `updated` + "`" + ` descending.
5. **Only toggling the favorite flag changes ` + "`" + `updated` + "`" + `.** There is no edit operation.
6. **Search is case-insensitive** and matches title or content.

## Summaries

summarize and summarize_all return at most three lines of Japanese text.
summarize_all sends every memo as ` + "`" + `title` + "`" + `, newline, ` + "`" + `content` + "`" + `,
separated by a line containing ` + "`" + `---` + "`" + `.
`
