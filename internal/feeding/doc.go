// Package feeding tracks campus cat feeding sites: location, supply levels
// and visit history. Proximity queries use great-circle distance over the
// full site list, which stays small enough that no spatial index is needed.
package feeding
