// Package timeline holds the event model and turns an event table into a
// declarative chart description.
//
// Categories are discovered in first-seen order. A category's lane and color
// derive from its ordinal, so both change when an upload reorders categories.
package timeline
