/*
Package signer implements AWS Signature Version 4 for S3-compatible services.

It covers the three signing shapes the protocol defines:

  - header signing: the canonical request is hashed into a string-to-sign,
    signed with a key derived from the secret, and emitted as an
    Authorization header (Sign).
  - presigning: the same signature is embedded in the query string of a URL
    that any HTTP client can use until its expiry (Presign).
  - chunk signing: a streaming upload is framed into chunks whose signatures
    chain from the request's seed signature (ChunkSigner, NewChunkedReader).

Signing is deterministic: for a fixed timestamp, credential snapshot and
request the output is reproducible byte for byte.
*/
package signer
