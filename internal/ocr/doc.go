// Package ocr recognizes text in normalized images with Tesseract.
//
// The package wraps the Tesseract engine (via gosseract/v2) behind the
// pipeline's TextRecognizer capability, so other engines can be swapped in
// without touching pipeline logic.
//
// # Prerequisites
//
// Tesseract and the language data for each requested language must be
// installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng tesseract-ocr-vie
//   - macOS: brew install tesseract tesseract-lang
//
// A custom data directory can be selected with the tessdata_prefix setting.
//
// # Languages
//
// Several language codes may be passed at once; they are joined into a
// single multilingual request (for example "vie+eng", the default).
//
// # Error Handling
//
// Start-up problems such as a missing library or missing language data are
// reported as apperr.KindRecognitionUnavailable. Failures while reading a
// particular image are logged as warnings and produce empty text instead of
// an error.
package ocr
