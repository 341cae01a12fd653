package config

// DefaultConfiguration is the configuration that will be in effect if no configuration is loaded from any of the expected locations
const DefaultConfiguration = `[redis]
address=localhost:6379
username=
password=
db=0
dial-timeout-seconds=5
read-timeout-seconds=3
write-timeout-seconds=3
[job-queue]
namespace=jobq
queues=live_reporting,default,notification,sync
default-queue=default
live-reporting-queue=live_reporting
[scheduling]
thread-create-lead-hours=24
reporting-lead-minutes=5
marker-ttl-hours=48
[circuit-breaker]
failure-threshold=5
recovery-timeout-seconds=60
max-retries=3
base-backoff-seconds=1
max-backoff-seconds=30
[bot-service]
update-endpoint=http://localhost:5001/api/live-updates
connection-timeout-in-seconds=30
token=
[queue-health]
check-cron=@every 1m
snapshot-retention-hours=24
total-backlog-limit=200
live-reporting-threshold=20
default-threshold=100
notification-threshold=50
sync-threshold=50
archive-url=
archive-object-prefix=queue-health
archive-max-size-in-bytes=10485760
export-min-age-hours=12
[http]
listener=:8080
read-timeout=240
write-timeout=240
[log]
filename=
max-file-size-in-mb=200
max-backups=3
max-age-in-days=28
compress-backups=true
`
