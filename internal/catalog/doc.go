// Package catalog records successfully ingested videos: title, asset key
// prefix, thumbnail reference and owning playlist. The pipeline only ever
// creates records; reads belong to the viewer applications.
package catalog
