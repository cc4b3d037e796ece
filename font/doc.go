// Package font decodes text shown with PDF fonts.
//
// A [Font] is built from a [Spec], the subset of a font dictionary the
// decoder needs: encoding, /Differences, ToUnicode CMap, widths and
// FontDescriptor style hints. [Font.Decode] splits a shown string into
// [Glyph] values carrying Unicode text and advance width.
//
// Text resolution order:
//
//  1. ToUnicode CMap (bfchar and bfrange, codespace-aware code splitting)
//  2. The simple font's base encoding with /Differences applied
//     (WinAnsi and MacRoman via golang.org/x/text/encoding/charmap)
//  3. Identity CIDs interpreted as Unicode code points for composite fonts
//
// Widths come from /Widths or /W, then from built-in metrics for the
// standard 14 fonts, then from /MissingWidth or DW.
package font
