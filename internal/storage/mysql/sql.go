package mysql

const insertHotelSQL = `
INSERT INTO hotels (name, city) VALUES (?, ?)
`

const getHotelSQL = `
SELECT id, name, city FROM hotels WHERE id = ?
`

const listHotelsSQL = `
SELECT id, name, city FROM hotels ORDER BY id
`

const deleteHotelSQL = `
DELETE FROM hotels WHERE id = ?
`

const updateHotelNameSQL = `
UPDATE hotels SET name = ? WHERE id = ?
`

const listLinksSQL = `
SELECT hotel_id, channel, channel_ref, url FROM hotel_channel_links WHERE hotel_id IN
`

// COALESCE keeps the stored ref/url when the fresh result carries only one of
// the two fields; unrelated columns are never clobbered.
const upsertLinkSQL = `
INSERT INTO hotel_channel_links (hotel_id, channel, channel_ref, url)
VALUES (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  channel_ref = COALESCE(VALUES(channel_ref), hotel_channel_links.channel_ref),
  url         = COALESCE(VALUES(url), hotel_channel_links.url)
`

// Snapshots are append-only: insert is the only write path, and there is
// deliberately no UPDATE or DELETE statement for review_snapshots here.
const insertSnapshotSQL = `
INSERT INTO review_snapshots
  (hotel_id, channel, average_score, normalized_score, total_reviews, fetched_at, raw)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

// Latest row per channel; ORDER BY id keeps insertion order so a timestamp tie
// resolves to the last-written row.
const latestSnapshotsSQL = `
SELECT s.id, s.hotel_id, s.channel, s.average_score, s.normalized_score, s.total_reviews, s.fetched_at, s.raw
FROM review_snapshots s
JOIN (
  SELECT channel, MAX(fetched_at) AS max_fetched
  FROM review_snapshots
  WHERE hotel_id = ?
  GROUP BY channel
) m ON m.channel = s.channel AND m.max_fetched = s.fetched_at
WHERE s.hotel_id = ?
ORDER BY s.id
`

const upsertThemesSQL = `
INSERT INTO hotel_themes (hotel_id, report)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE report = VALUES(report), extracted_at = CURRENT_TIMESTAMP
`

const getThemesSQL = `
SELECT report FROM hotel_themes WHERE hotel_id = ?
`
