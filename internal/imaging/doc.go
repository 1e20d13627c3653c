// Package imaging loads uploaded images and prepares them for OCR.
//
// Decode accepts PNG, JPEG, GIF, HEIC/HEIF and single-page PDF uploads.
// Normalizer converts any decoded image into a strictly two-valued
// *image.Gray through a fixed sequence of stages: grayscale, CLAHE
// contrast enhancement, non-local means denoising and Otsu binarization.
// Crop and Upscale prepare regions and small screenshots beforehand.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner. For
// regions, (x1,y1) is inclusive and (x2,y2) is exclusive. Normalized images
// are always anchored at (0,0), whatever the input bounds were.
//
// # Thread Safety
//
// Every function is stateless and safe to call concurrently on different
// images. Nothing is cached between calls.
//
// # Error Handling
//
// Undecodable, empty or zero-area inputs fail with apperr.KindInvalidImage.
// Bad crop regions fail with apperr.KindInvalidArgument.
//
// # Performance Considerations
//
// Non-local means dominates the cost at O(pixels * search²). Its bands run in
// parallel. Lower search_size in the configuration for very large scans.
package imaging
