package app

// dashboardHTML paints the view models pushed over /ws. All labels,
// classes and colors arrive precomputed.
const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>spinwatch</title>
    <style>
        :root {
            --bg-primary: #07070f;
            --bg-secondary: #10101c;
            --bg-tertiary: #1a1a2a;
            --border-color: #2a2a40;
            --text-primary: #d8d8ea;
            --text-secondary: #8a8aa6;
            --accent-cyan: #00f2ff;
            --accent-green: #00ff88;
            --accent-pink: #ff00aa;
            --accent-purple: #b947ff;
            --accent-yellow: #ffdd00;
            --accent-red: #ff3366;
        }
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; background: var(--bg-primary); color: var(--text-primary); padding: 20px; }
        header { display: flex; align-items: center; justify-content: space-between; margin-bottom: 20px; }
        h1 { font-size: 20px; letter-spacing: 2px; }
        h2 { font-size: 12px; color: var(--text-secondary); text-transform: uppercase; letter-spacing: 1px; margin-bottom: 10px; }
        .status { display: flex; align-items: center; gap: 8px; font-weight: 600; }
        .status-dot { width: 10px; height: 10px; border-radius: 50%; background: var(--accent-yellow); }
        .status.online .status-dot { background: var(--accent-green); box-shadow: 0 0 8px var(--accent-green); }
        .status.offline .status-dot { background: var(--accent-red); }
        .meta { color: var(--text-secondary); font-size: 12px; }
        .grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(280px, 1fr)); gap: 16px; margin-bottom: 16px; }
        .panel { background: var(--bg-secondary); border: 1px solid var(--border-color); border-radius: 8px; padding: 16px; }
        .big { font-size: 36px; font-weight: 700; }
        .counters { display: flex; gap: 24px; }
        .ring { display: flex; align-items: center; gap: 16px; }
        .ring circle { fill: none; stroke-width: 10; }
        .ring .track { stroke: var(--bg-tertiary); }
        .card { background: var(--bg-tertiary); border-radius: 6px; padding: 12px; margin-bottom: 10px; }
        .card.hot-glow-card { box-shadow: 0 0 12px var(--accent-pink); }
        .card-head { display: flex; justify-content: space-between; align-items: center; margin-bottom: 8px; }
        .badge { font-size: 11px; font-weight: 700; padding: 2px 8px; border-radius: 10px; }
        .badge.cold { background: #1e3a5f; }
        .badge.warm { background: #7a5c00; }
        .badge.hot { background: var(--accent-pink); }
        .badge.miss { background: #444; }
        .bar { height: 6px; background: var(--bg-primary); border-radius: 3px; overflow: hidden; }
        .bar div { height: 100%; background: var(--accent-cyan); }
        .bar .warm { background: var(--accent-yellow); }
        .bar .hot-glow { background: var(--accent-pink); }
        .bar .miss { background: #555; }
        .strip { display: flex; flex-wrap: wrap; gap: 4px; }
        .chip { font-size: 11px; padding: 3px 6px; border-radius: 4px; background: var(--bg-tertiary); }
        .chip.bonus-ct, .chip.badge-ct { background: var(--accent-pink); }
        .chip.bonus-pk, .chip.badge-pk { background: #d53f8c; }
        .chip.bonus-ch, .chip.badge-ch { background: #38a169; }
        .chip.bonus-cf, .chip.badge-cf { background: #e53e3e; }
        .bars { display: flex; align-items: flex-end; gap: 6px; height: 120px; }
        .bars div { flex: 1; text-align: center; font-size: 10px; }
        .cells { display: flex; flex-wrap: wrap; gap: 2px; }
        .cells span { width: 14px; height: 14px; border-radius: 2px; }
        .dist-cold { background: #1e3a5f; }
        .dist-window { background: var(--accent-cyan); }
        .dist-warm { background: var(--accent-yellow); }
        .dist-hot { background: var(--accent-pink); }
        .dist-extreme { background: var(--accent-red); }
        .alert { display: flex; justify-content: space-between; font-size: 13px; padding: 4px 0; }
        .alert.active { color: var(--accent-cyan); }
        .errors { color: var(--accent-red); font-size: 12px; }
    </style>
</head>
<body>
    <header>
        <h1>SPINWATCH</h1>
        <div>
            <div id="status" class="status"><span class="status-dot"></span><span id="statusText">CONNECTING</span></div>
            <div class="meta" id="lastUpdate"></div>
        </div>
    </header>

    <div class="grid">
        <div class="panel"><h2>Current result</h2><div id="current" class="big">-</div><div class="meta" id="currentMeta"></div></div>
        <div class="panel"><h2>Spins today</h2><div id="total" class="big">0</div><div class="counters" id="counters"></div></div>
        <div class="panel"><h2>Progress</h2>
            <div class="ring">
                <svg width="120" height="120" viewBox="0 0 120 120">
                    <circle class="track" cx="60" cy="60" r="52"></circle>
                    <circle id="ringArc" cx="60" cy="60" r="52" stroke-dasharray="326.7" stroke-dashoffset="326.7" transform="rotate(-90 60 60)"></circle>
                </svg>
                <div><div id="ringValue" class="big">0</div><div class="meta" id="ringMeta"></div></div>
            </div>
        </div>
    </div>

    <div class="grid">
        <div class="panel"><h2>Betting windows</h2><div id="cards"></div></div>
        <div class="panel"><h2>Alerts</h2><div id="alerts"></div><div class="errors" id="errors"></div></div>
    </div>

    <div class="panel" style="margin-bottom:16px"><h2>Ticker</h2><div class="strip" id="ticker"></div></div>
    <div class="panel" style="margin-bottom:16px"><h2>Heatmap</h2><div class="strip" id="heatmap"></div></div>

    <div class="grid">
        <div class="panel"><h2>Distribution</h2><div class="bars" id="distribution"></div><div class="meta" id="distMeta"></div></div>
        <div class="panel"><h2>Distance history</h2><div id="grids"></div></div>
    </div>

    <script>
        function el(tag, cls, text) {
            const e = document.createElement(tag);
            if (cls) e.className = cls;
            if (text !== undefined) e.textContent = text;
            return e;
        }

        function replace(id, children) {
            const node = document.getElementById(id);
            node.replaceChildren(...children);
        }

        function paint(d) {
            const status = document.getElementById('status');
            status.className = 'status ' + d.header.status_class;
            document.getElementById('statusText').textContent = d.header.status_text;
            document.getElementById('lastUpdate').textContent = 'Last update: ' + new Date(d.generated_at).toLocaleTimeString();
            document.getElementById('total').textContent = d.header.total_spins_today;

            const cur = document.getElementById('current');
            cur.textContent = d.current_result.result;
            cur.className = 'big ' + d.current_result.class;
            document.getElementById('currentMeta').textContent = d.current_result.has_value ? '#' + d.current_result.spin_id + ' ' + (d.current_result.time || '') : '';

            replace('counters', (d.counters || []).map(c => {
                const box = el('div');
                box.append(el('div', 'meta', c.name), el('div', 'big', c.spins_since));
                return box;
            }));

            const arc = document.getElementById('ringArc');
            arc.setAttribute('stroke-dashoffset', d.ring.dash_offset);
            arc.setAttribute('stroke', d.ring.color);
            document.getElementById('ringValue').textContent = d.ring.distance;
            document.getElementById('ringMeta').textContent = d.ring.threshold ? '/ ' + d.ring.threshold + ' ' + d.ring.pattern_id : '';

            replace('cards', (d.cards || []).map(c => {
                const card = el('div', 'card ' + c.card_class);
                const head = el('div', 'card-head');
                head.append(el('strong', '', c.name + ' (' + c.distance + ')'), el('span', 'badge ' + c.badge.class, c.badge.label));
                const bar = el('div', 'bar');
                const fill = el('div', c.bar_class);
                fill.style.width = c.status.progress_percent + '%';
                bar.append(fill);
                const meta = el('div', 'meta', c.window_label + '  THRESHOLD ' + (c.thresholds || []).map(t => t.threshold).join(' / '));
                card.append(head, bar, meta);
                return card;
            }));

            replace('alerts', (d.alerts.items || []).map(a => {
                const row = el('div', 'alert' + (a.active ? ' active' : ''));
                row.append(el('span', '', a.name + ' @ ' + a.threshold), el('span', '', a.status_label));
                return row;
            }));
            if (d.alerts.empty) replace('alerts', [el('div', 'meta', 'No active alerts')]);
            replace('errors', Object.entries(d.errors || {}).map(([k, v]) => el('div', '', k + ': ' + v)));

            replace('ticker', (d.ticker || []).map(s => el('span', 'chip ' + s.class, s.label)));
            replace('heatmap', (d.heatmap || []).map(s => {
                const chip = el('span', 'chip ' + s.class, s.label);
                chip.title = s.tooltip;
                return chip;
            }));

            replace('distribution', (d.distribution.bars || []).map(b => {
                const col = el('div');
                const fill = el('div');
                fill.style.height = b.height_percent + '%';
                fill.style.background = b.color;
                col.style.display = 'flex';
                col.style.flexDirection = 'column';
                col.style.justifyContent = 'flex-end';
                col.append(el('span', '', b.count), fill, el('span', '', b.label));
                return col;
            }));
            document.getElementById('distMeta').textContent = 'Most ' + d.distribution.most_frequent.category + ' / least ' + d.distribution.least_frequent.category;

            replace('grids', (d.grids || []).map(g => {
                const box = el('div');
                const cells = el('div', 'cells');
                cells.append(...g.cells.map(c => {
                    const s = el('span', c.class);
                    s.title = c.tooltip;
                    return s;
                }));
                box.append(el('div', 'meta', g.name), cells);
                return box;
            }));
        }

        function connect() {
            const proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
            const ws = new WebSocket(proto + '//' + location.host + '/ws');
            ws.onmessage = ev => paint(JSON.parse(ev.data));
            ws.onclose = () => setTimeout(connect, 3000);
        }

        fetch('/api/dashboard').then(r => r.ok ? r.json() : null).then(d => { if (d) paint(d); }).finally(connect);
    </script>
</body>
</html>
`
