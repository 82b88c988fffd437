package db

const blobTable = "blob"

// SchemaSQL defines the single table backing the key-value port.
// Record ids are the blob keys.
const SchemaSQL = `
    DEFINE TABLE IF NOT EXISTS blob SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS value ON blob TYPE string;
    DEFINE FIELD IF NOT EXISTS updated ON blob TYPE datetime DEFAULT time::now();
`
