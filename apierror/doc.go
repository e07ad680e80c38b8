// Package apierror defines the single error envelope returned for every failed
// AMOS / MVR API call and the rules that fill it.
//
// Whatever went wrong (a well-formed error body, a malformed body, or no
// response at all), callers receive an *Error whose required fields are always
// populated and whose Attribution is never empty.
package apierror
