package library

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

const (
	// NameSeparator splits first name from last name in an authortitle key.
	NameSeparator = "\u0006"
	// TitleSeparator splits the author from the title in an authortitle key.
	TitleSeparator = "\u0007"
)

// GenerateEbookID derives the ebook identity from already sanitized author and title.
// It hashes "{author}~{title}" and performs no normalization itself.
func GenerateEbookID(author, title string) string {
	sum := md5.Sum([]byte(author + "~" + title))
	return hex.EncodeToString(sum[:])
}

// AuthorTitleKey builds the combined key a client sends for a book.
func AuthorTitleKey(firstname, lastname, title string) string {
	return firstname + NameSeparator + lastname + TitleSeparator + title
}

// ParseAuthorTitle splits an authortitle key and repairs its text. The author is
// reassembled as "{firstname} {lastname}". Case is preserved for display; use
// EbookIDFor to derive the identity.
func ParseAuthorTitle(key string) (author, title string, err error) {
	names, rawTitle, ok := strings.Cut(key, TitleSeparator)
	if !ok {
		return "", "", badMetaData("authortitle key has no title separator")
	}
	first, last, ok := strings.Cut(names, NameSeparator)
	if !ok {
		return "", "", badMetaData("authortitle key has no name separator")
	}
	if strings.Contains(last, NameSeparator) || strings.Contains(rawTitle, TitleSeparator) {
		return "", "", badMetaData("authortitle key has repeated separators")
	}

	author = collapseSpace(FixText(first) + " " + FixText(last))
	title = collapseSpace(FixText(rawTitle))
	if title == "" {
		return "", "", badMetaData("empty title")
	}
	if author == "" {
		return "", "", badMetaData("empty author")
	}
	return author, title, nil
}

// EbookIDFor sanitizes author and title and derives the ebook identity. Both the
// lookup and the creation path go through here.
func EbookIDFor(author, title string) string {
	return GenerateEbookID(Sanitize(author), Sanitize(title))
}

// Sanitize lowercases, trims and collapses internal whitespace.
func Sanitize(s string) string {
	return collapseSpace(strings.ToLower(s))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
