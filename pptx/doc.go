// Package pptx projects a document model onto a PowerPoint (.pptx)
// presentation.
//
// Each page becomes one slide. Paragraphs become text boxes, images become
// pictures and tables become table graphic frames, all placed at their
// scaled page position. A page with images but no text or tables shows its
// largest image stretched over the slide.
package pptx
