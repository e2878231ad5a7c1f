/*
Package inmem records which keys have recently been seen, either in the
memory of the local process or in redis when several console daemons share
the same log stream.
*/
package inmem

import "time"

// DefaultTTL is how long a key is remembered unless configured otherwise.
const DefaultTTL = 10 * time.Minute
