// Package records persists the content records consumed by the external
// HTTP layer and keeps them synchronized with pipeline state. Updates are
// addressed by a path (record root or a season/episode coordinate); a show's
// aggregate status is always recomputed from its episodes and never set
// independently.
package records
