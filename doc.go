// Package pgcopy streams bulk data in and out of PostgreSQL with the COPY
// protocol.
//
// A Copy session is scoped: the caller dispatches a COPY statement through a
// Transport, opens the session with Begin, moves data with Write, WriteRow,
// or Read, and ends with exactly one call to Finish. Run wraps the whole
// lifecycle around a callback so no path can leak an unfinished session.
//
//	rows, err := pgcopy.Run(transport, nil, func(c *pgcopy.Copy) error {
//		for _, r := range records {
//			if err := c.WriteRow(r.ID, r.Weight, r.Name); err != nil {
//				return err
//			}
//		}
//		return nil
//	})
//
// Value conversion is delegated to package pgtype. Frontend is a ready-made
// Transport over the PostgreSQL wire protocol; custom transports only need
// to satisfy the small Transport interface.
package pgcopy
