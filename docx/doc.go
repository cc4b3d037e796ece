// Package docx projects a document model onto a Word (.docx) package.
//
// [Project] maps pages to sections, paragraphs to styled runs, tables to
// w:tbl elements with gridSpan and vMerge for merged cells, and images to
// inline pictures. A table that continues across pages is written once,
// where its first part appears. [Tree.Write] serialises the result as an
// Office Open XML zip package.
package docx
