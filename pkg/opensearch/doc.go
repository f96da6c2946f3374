// Package opensearch connects to an OpenSearch cluster and mirrors ledger
// events into an index.
//
//	client, err := opensearch.New(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	ix := opensearch.NewIndexer(client, opensearch.WithIndex(cfg.Index))
//	go ix.Run(ctx, host)
//
// The indexer is a live subscriber: events published while it is not running
// are not backfilled. Documents are keyed by event id.
package opensearch
