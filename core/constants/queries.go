package constants

import "fmt"

const TEST_QUERY = "SELECT 1"

var DOCUMENT_TABLE_QUERY = fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS "%s" (
name TEXT PRIMARY KEY,
version TEXT NOT NULL,
checksum VARCHAR(64) NOT NULL,
document JSONB NOT NULL,
updated_at TIMESTAMP(3) NOT NULL DEFAULT now()
);
`, DOCUMENT_TABLE)

var UPSERT_DOCUMENT = fmt.Sprintf(`
INSERT INTO "%s" (name, version, checksum, document, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (name) DO UPDATE SET
version = EXCLUDED.version,
checksum = EXCLUDED.checksum,
document = EXCLUDED.document,
updated_at = now();
`, DOCUMENT_TABLE)

var FETCH_DOCUMENT = fmt.Sprintf(`
SELECT
document::text,
checksum
FROM "%s"
WHERE name = $1;
`, DOCUMENT_TABLE)

var FETCH_ALL_DOCUMENTS = fmt.Sprintf(`
SELECT
name,
version,
checksum,
updated_at
FROM "%s"
ORDER BY name ASC;
`, DOCUMENT_TABLE)

var DELETE_DOCUMENT = fmt.Sprintf(`
DELETE FROM "%s"
WHERE name = $1;
`, DOCUMENT_TABLE)

var FETCH_CHECKSUM = fmt.Sprintf(`
SELECT
checksum
FROM "%s"
WHERE name = $1;
`, DOCUMENT_TABLE)

var DROP_DOCUMENT_TABLE = fmt.Sprintf(`
DROP TABLE IF EXISTS "%s";
`, DOCUMENT_TABLE)
