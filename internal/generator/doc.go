// Package generator synthesizes vcluster configurations from high-level
// parameters such as the distribution and the backing store.
//
// Generate only builds the document. Callers are expected to run the result
// through package validation before handing it out; the create-vcluster-config
// tool does exactly that and treats a rejected product as a generator bug.
package generator
