// Package match is the card matching and extraction core: it groups an
// unordered batch of scan files into front/back pairs keyed by an
// identifier recovered from filename or pixel content, extracts and
// cross-validates a holder name through multiple independent recognition
// heuristics with confidence scoring, and resolves conflicts when images
// or methods disagree. All layout-specific tuning lives in a Profile so
// other card families plug in as data.
package match
